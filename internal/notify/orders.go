package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/lowkeylabs/lowkey/internal/checkout"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/ids"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderListener turns order-completed events into a member notification row
// and an operator Telegram message. Subscribed on the process bus.
type OrderListener struct {
	db       *gorm.DB
	telegram *Telegram
}

func NewOrderListener(db *gorm.DB, telegram *Telegram) *OrderListener {
	return &OrderListener{db: db, telegram: telegram}
}

func (l *OrderListener) HandleOrderCompleted(ev checkout.OrderCompleted) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n := domain.Notification{
		ID:     ids.Next(),
		UserID: ev.UserID,
		Kind:   "order_completed",
		Title:  "Purchase confirmed",
		Body:   fmt.Sprintf("Your order for %s is confirmed.", ev.ProductName),
	}
	if err := l.db.WithContext(ctx).Create(&n).Error; err != nil {
		zap.L().Error("failed to write order notification",
			zap.Int64("order_id", ev.OrderID), zap.Error(err))
	}

	text := fmt.Sprintf("New order %d: %s ($%.2f) by member %d",
		ev.OrderID, ev.ProductName, float64(ev.TotalCents)/100, ev.UserID)
	if err := l.telegram.Notify(ctx, text); err != nil {
		zap.L().Warn("failed to send order telegram message",
			zap.Int64("order_id", ev.OrderID), zap.Error(err))
	}
}
