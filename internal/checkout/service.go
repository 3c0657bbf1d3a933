// Package checkout sequences the calls that turn a catalog selection into
// a persisted order: session creation at the payments collaborator, status
// retrieval, and order persistence. The collaborator is the only party who
// can assert "money was received", so finalize always re-reads payment
// status instead of trusting the caller.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/lowkeylabs/lowkey/internal/catalog"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/lowkeylabs/lowkey/internal/payments"
	"go.uber.org/zap"
)

// TopicOrderCompleted carries OrderCompleted events on the process bus.
const TopicOrderCompleted = "order.completed"

// OrderCompleted is published after an order row lands.
type OrderCompleted struct {
	OrderID     int64
	UserID      int64
	ProductID   string
	ProductName string
	TotalCents  int64
}

// Status is the typed view of a collaborator session handed to callers.
type Status struct {
	PaymentStatus    string `json:"payment_status"`
	SessionID        string `json:"session_id"`
	PaymentIntentRef string `json:"payment_intent,omitempty"`
}

// PaymentsClient is the outbound payments boundary.
type PaymentsClient interface {
	CreateSession(ctx context.Context, p payments.SessionParams) (*payments.Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*payments.Session, error)
}

// Repository persists checkout sessions and orders.
type Repository interface {
	// RecordSession stores the local shadow of a begun session.
	RecordSession(ctx context.Context, sess *domain.CheckoutSession) error

	// GetSession retrieves a session shadow; nil with no error means the
	// orchestrator never created it.
	GetSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)

	// MarkSession updates a session shadow's status.
	MarkSession(ctx context.Context, sessionID, status string) error

	// ListOpenSessions returns open sessions begun before the cutoff.
	ListOpenSessions(ctx context.Context, before time.Time, limit int) ([]domain.CheckoutSession, error)

	// CreateOrderWithItem inserts the order and its line item in one
	// transaction. A duplicate stripe_session_id must come back as an
	// errs.KindConflict error.
	CreateOrderWithItem(ctx context.Context, order *domain.Order, item *domain.OrderItem) error

	// ListUserOrders returns a member's orders, newest first, with items.
	ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error)
}

// Locker is a best-effort fast-path guard against concurrent finalize calls
// for the same session. The unique index on orders.stripe_session_id stays
// the source of truth.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Service struct {
	catalog  *catalog.Catalog
	payments PaymentsClient
	repo     Repository
	locker   Locker
	bus      EventBus.Bus
}

func NewService(cat *catalog.Catalog, pc PaymentsClient, repo Repository, locker Locker, bus EventBus.Bus) *Service {
	return &Service{catalog: cat, payments: pc, repo: repo, locker: locker, bus: bus}
}

const finalizeLockTTL = 2 * time.Minute

// Begin creates a collaborator session for one product at its exact catalog
// price and returns the opaque client secret. An unknown product never
// reaches the collaborator.
func (s *Service) Begin(ctx context.Context, productID string, userID int64, email string) (string, error) {
	product, ok := s.catalog.Lookup(productID)
	if !ok {
		return "", errs.NotFound("PRODUCT_NOT_FOUND", fmt.Sprintf("product %q not found", productID))
	}
	if userID == 0 {
		return "", errs.Unauthenticated("sign in to checkout")
	}

	sess, err := s.payments.CreateSession(ctx, payments.SessionParams{
		ProductID:          product.ID,
		ProductName:        product.Name,
		ProductDescription: product.Description,
		AmountCents:        product.PriceCents,
		Currency:           "usd",
		CustomerEmail:      email,
		UserID:             userID,
	})
	if err != nil {
		return "", err
	}

	if err := s.repo.RecordSession(ctx, &domain.CheckoutSession{
		SessionID: sess.ID,
		UserID:    userID,
		ProductID: product.ID,
		Status:    domain.SessionStatusOpen,
	}); err != nil {
		zap.L().Error("failed to record checkout session",
			zap.String("session_id", sess.ID), zap.Error(err))
		return "", err
	}

	return sess.ClientSecret, nil
}

// GetStatus reads the collaborator's view of a session. Read-only.
func (s *Service) GetStatus(ctx context.Context, sessionID string) (*Status, error) {
	sess, err := s.payments.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Status{
		PaymentStatus:    sess.PaymentStatus,
		SessionID:        sess.ID,
		PaymentIntentRef: sess.PaymentIntent,
	}, nil
}

// Finalize writes the order for a paid session. The session must be one
// this orchestrator began, and payment status is re-read from the
// collaborator before anything is persisted. At most one order can ever
// exist per session.
func (s *Service) Finalize(ctx context.Context, sessionID, productID string, userID int64) (*domain.Order, error) {
	if userID == 0 {
		return nil, errs.Unauthenticated("sign in to finalize checkout")
	}
	product, ok := s.catalog.Lookup(productID)
	if !ok {
		return nil, errs.NotFound("PRODUCT_NOT_FOUND", fmt.Sprintf("product %q not found", productID))
	}

	shadow, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if shadow == nil {
		return nil, errs.NotFound("SESSION_NOT_FOUND", "unknown checkout session")
	}

	return s.finalize(ctx, shadow, product, userID)
}

func (s *Service) finalize(ctx context.Context, shadow *domain.CheckoutSession, product catalog.Product, userID int64) (*domain.Order, error) {
	remote, err := s.payments.RetrieveSession(ctx, shadow.SessionID)
	if err != nil {
		return nil, err
	}
	if remote.Status == payments.SessionStatusExpired {
		_ = s.repo.MarkSession(ctx, shadow.SessionID, domain.SessionStatusExpired)
		return nil, errs.NotFound("SESSION_EXPIRED", "checkout session expired")
	}
	if remote.PaymentStatus != payments.PaymentStatusPaid {
		return nil, errs.Validation("SESSION_NOT_PAID", "checkout session is not paid")
	}

	if s.locker != nil {
		key := "checkout:finalize:" + shadow.SessionID
		acquired, lockErr := s.locker.TryLock(ctx, key, finalizeLockTTL)
		if lockErr != nil {
			// Redis being down must not block a paid checkout; the DB
			// unique index still guards correctness.
			zap.L().Warn("finalize lock unavailable", zap.Error(lockErr))
		} else if !acquired {
			return nil, errs.Conflict("FINALIZE_IN_PROGRESS", "checkout is already being finalized")
		} else {
			defer func() { _ = s.locker.Unlock(ctx, key) }()
		}
	}

	order := &domain.Order{
		UserID:          userID,
		TotalPriceCents: product.PriceCents,
		Status:          domain.OrderStatusCompleted,
		StripeSessionID: shadow.SessionID,
	}
	item := &domain.OrderItem{
		ProductID:  product.ID,
		Quantity:   1,
		PriceCents: product.PriceCents,
	}
	if err := s.repo.CreateOrderWithItem(ctx, order, item); err != nil {
		return nil, err
	}
	if err := s.repo.MarkSession(ctx, shadow.SessionID, domain.SessionStatusCompleted); err != nil {
		zap.L().Warn("order persisted but session shadow not marked completed",
			zap.String("session_id", shadow.SessionID), zap.Error(err))
	}

	if s.bus != nil {
		s.bus.Publish(TopicOrderCompleted, OrderCompleted{
			OrderID:     order.ID,
			UserID:      order.UserID,
			ProductID:   product.ID,
			ProductName: product.Name,
			TotalCents:  order.TotalPriceCents,
		})
	}

	zap.L().Info("checkout finalized",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("product_id", product.ID),
		zap.String("session_id", shadow.SessionID))

	order.Items = []domain.OrderItem{*item}
	return order, nil
}

// OpenSessions lists sessions still open that were begun before the cutoff.
func (s *Service) OpenSessions(ctx context.Context, olderThan time.Duration, limit int) ([]domain.CheckoutSession, error) {
	return s.repo.ListOpenSessions(ctx, time.Now().Add(-olderThan), limit)
}

// Reconcile re-checks one open session against the collaborator: paid
// sessions get their order written (same path as client finalize), expired
// and canceled ones are closed out. Covers clients that disconnected after
// paying but before calling finalize.
func (s *Service) Reconcile(ctx context.Context, sessionID string) error {
	shadow, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if shadow == nil {
		return errs.NotFound("SESSION_NOT_FOUND", "unknown checkout session")
	}
	if shadow.Status != domain.SessionStatusOpen {
		return nil
	}
	product, ok := s.catalog.Lookup(shadow.ProductID)
	if !ok {
		return errs.NotFound("PRODUCT_NOT_FOUND", "session references unknown product")
	}

	_, err = s.finalize(ctx, shadow, product, shadow.UserID)
	switch errs.KindOf(err) {
	case errs.KindValidation:
		// still unpaid, leave it open
		return nil
	case errs.KindConflict:
		// someone else already finalized it
		return s.repo.MarkSession(ctx, sessionID, domain.SessionStatusCompleted)
	}
	return err
}

// ListUserOrders returns a member's purchase history.
func (s *Service) ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	if userID == 0 {
		return nil, errs.Unauthenticated("sign in to view orders")
	}
	return s.repo.ListUserOrders(ctx, userID)
}
