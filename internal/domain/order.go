package domain

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

const (
	SessionStatusOpen      = "open"
	SessionStatusCompleted = "completed"
	SessionStatusExpired   = "expired"
	SessionStatusCanceled  = "canceled"
)

// Order is the persisted record of a completed purchase. The unique index
// on stripe_session_id is what keeps a double finalize from producing two
// orders for one payment.
type Order struct {
	ID              int64       `json:"id,string" form:"id"`
	UserID          int64       `gorm:"index" json:"user_id,string" form:"user_id"`
	TotalPriceCents int64       `json:"total_price_cents" form:"total_price_cents"`
	Status          string      `gorm:"size:32;index" json:"status" form:"status"`
	StripeSessionID string      `gorm:"size:255;uniqueIndex" json:"stripe_session_id" form:"stripe_session_id"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is the single line item of an order; quantity is fixed at 1 in
// the current catalog model.
type OrderItem struct {
	ID         int64     `json:"id,string" form:"id"`
	OrderID    int64     `gorm:"index" json:"order_id,string" form:"order_id"`
	ProductID  string    `gorm:"size:128;index" json:"product_id" form:"product_id"`
	Quantity   int       `json:"quantity" form:"quantity"`
	PriceCents int64     `json:"price_cents" form:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// CheckoutSession is the local shadow of a payments-collaborator session:
// enough to know who began checkout for what, so abandoned sessions can be
// reconciled later. The collaborator stays authoritative for payment state.
type CheckoutSession struct {
	ID        int64     `json:"id,string" form:"id"`
	SessionID string    `gorm:"size:255;uniqueIndex" json:"session_id" form:"session_id"`
	UserID    int64     `gorm:"index" json:"user_id,string" form:"user_id"`
	ProductID string    `gorm:"size:128" json:"product_id" form:"product_id"`
	Status    string    `gorm:"size:32;index" json:"status" form:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}
