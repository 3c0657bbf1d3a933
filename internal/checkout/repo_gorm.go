package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/lowkeylabs/lowkey/internal/ids"
	"gorm.io/gorm"
)

// GormRepository is the Postgres-backed checkout Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ Repository = (*GormRepository)(nil)

func (r *GormRepository) RecordSession(ctx context.Context, sess *domain.CheckoutSession) error {
	if sess.ID == 0 {
		sess.ID = ids.Next()
	}
	if err := r.db.WithContext(ctx).Create(sess).Error; err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to record checkout session")
	}
	return nil
}

func (r *GormRepository) GetSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	var sess domain.CheckoutSession
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Upstream(err, "DATABASE_ERROR", "failed to query checkout session")
	}
	return &sess, nil
}

func (r *GormRepository) MarkSession(ctx context.Context, sessionID, status string) error {
	err := r.db.WithContext(ctx).
		Model(&domain.CheckoutSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
	if err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to update checkout session")
	}
	return nil
}

func (r *GormRepository) ListOpenSessions(ctx context.Context, before time.Time, limit int) ([]domain.CheckoutSession, error) {
	var sessions []domain.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.SessionStatusOpen, before).
		Order("created_at").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, errs.Upstream(err, "DATABASE_ERROR", "failed to list open checkout sessions")
	}
	return sessions, nil
}

// CreateOrderWithItem writes the order and its item in one transaction, so
// a failed item insert never leaves a bare order behind.
func (r *GormRepository) CreateOrderWithItem(ctx context.Context, order *domain.Order, item *domain.OrderItem) error {
	if order.ID == 0 {
		order.ID = ids.Next()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		item.ID = ids.Next()
		item.OrderID = order.ID
		return tx.Create(item).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict("ORDER_EXISTS", "an order already exists for this checkout session")
	}
	if err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to persist order")
	}
	return nil
}

func (r *GormRepository) ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, errs.Upstream(err, "DATABASE_ERROR", "failed to list orders")
	}
	return out, nil
}
