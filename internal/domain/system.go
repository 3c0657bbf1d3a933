package domain

import "time"

// Notification is a per-member activity feed entry, written when an order
// completes or an operator posts an announcement.
type Notification struct {
	ID        int64     `json:"id,string" form:"id"`
	UserID    int64     `gorm:"index" json:"user_id,string" form:"user_id"`
	Kind      string    `gorm:"size:64" json:"kind" form:"kind"`
	Title     string    `gorm:"size:255" json:"title" form:"title"`
	Body      string    `gorm:"size:2048" json:"body" form:"body"`
	Read      bool      `gorm:"index" json:"read" form:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// VaultItem is a keyholder-only document reference served behind the
// access-key gate.
type VaultItem struct {
	ID          int64     `json:"id,string" form:"id"`
	Code        string    `gorm:"size:64;uniqueIndex" json:"code" form:"code"`
	Name        string    `gorm:"size:255" json:"name" form:"name"`
	Description string    `gorm:"size:1024" json:"description" form:"description"`
	URL         string    `gorm:"size:1024" json:"url" form:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (VaultItem) TableName() string {
	return "vault_items"
}

// ProtocolSignup is a captured email from the public protocol form.
type ProtocolSignup struct {
	ID        int64     `json:"id,string" form:"id"`
	Email     string    `gorm:"size:255;index" json:"email" form:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProtocolSignup) TableName() string {
	return "protocol_signups"
}
