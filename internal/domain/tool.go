package domain

import "time"

// Tool is a tier-gated member capability. AccessLevel is one of the four
// ordered tiers; see internal/access.
type Tool struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"size:200;index" json:"name" form:"name"`
	Description string    `gorm:"size:1024" json:"description" form:"description"`
	AccessLevel string    `gorm:"size:32" json:"access_level" form:"access_level"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Tool) TableName() string {
	return "tools"
}

// UserTool records that a member unlocked a tool. The composite primary key
// makes a repeated grant a duplicate-key conflict rather than a silent no-op.
type UserTool struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id,string" form:"user_id"`
	ToolID    int64     `gorm:"primaryKey;autoIncrement:false" json:"tool_id,string" form:"tool_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserTool) TableName() string {
	return "user_tools"
}
