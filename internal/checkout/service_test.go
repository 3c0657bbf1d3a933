package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowkeylabs/lowkey/internal/catalog"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/lowkeylabs/lowkey/internal/payments"
)

type fakePayments struct {
	createCalls   int
	retrieveCalls int
	sessions      map[string]*payments.Session
	lastParams    payments.SessionParams
}

func newFakePayments() *fakePayments {
	return &fakePayments{sessions: map[string]*payments.Session{}}
}

func (f *fakePayments) CreateSession(_ context.Context, p payments.SessionParams) (*payments.Session, error) {
	f.createCalls++
	f.lastParams = p
	sess := &payments.Session{
		ID:            "cs_test_1",
		ClientSecret:  "cs_test_1_secret",
		Status:        payments.SessionStatusOpen,
		PaymentStatus: payments.PaymentStatusUnpaid,
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakePayments) RetrieveSession(_ context.Context, sessionID string) (*payments.Session, error) {
	f.retrieveCalls++
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, errs.NotFound("SESSION_NOT_FOUND", "no such session")
	}
	cp := *sess
	return &cp, nil
}

func (f *fakePayments) markPaid(sessionID string) {
	f.sessions[sessionID].Status = payments.SessionStatusComplete
	f.sessions[sessionID].PaymentStatus = payments.PaymentStatusPaid
	f.sessions[sessionID].PaymentIntent = "pi_test_1"
}

type fakeRepo struct {
	shadows map[string]*domain.CheckoutSession
	orders  []domain.Order
	nextID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{shadows: map[string]*domain.CheckoutSession{}, nextID: 1}
}

func (r *fakeRepo) RecordSession(_ context.Context, sess *domain.CheckoutSession) error {
	cp := *sess
	r.shadows[sess.SessionID] = &cp
	return nil
}

func (r *fakeRepo) GetSession(_ context.Context, sessionID string) (*domain.CheckoutSession, error) {
	sess, ok := r.shadows[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (r *fakeRepo) MarkSession(_ context.Context, sessionID, status string) error {
	if sess, ok := r.shadows[sessionID]; ok {
		sess.Status = status
	}
	return nil
}

func (r *fakeRepo) ListOpenSessions(_ context.Context, before time.Time, limit int) ([]domain.CheckoutSession, error) {
	var out []domain.CheckoutSession
	for _, sess := range r.shadows {
		if sess.Status == domain.SessionStatusOpen {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateOrderWithItem(_ context.Context, order *domain.Order, item *domain.OrderItem) error {
	for _, existing := range r.orders {
		if existing.StripeSessionID == order.StripeSessionID {
			return errs.Conflict("ORDER_EXISTS", "order already recorded for this session")
		}
	}
	order.ID = r.nextID
	r.nextID++
	item.OrderID = order.ID
	cp := *order
	cp.Items = []domain.OrderItem{*item}
	r.orders = append(r.orders, cp)
	return nil
}

func (r *fakeRepo) ListUserOrders(_ context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeLocker struct {
	held map[string]bool
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key string) error {
	delete(l.held, key)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakePayments, *fakeRepo, EventBus.Bus) {
	t.Helper()
	pc := newFakePayments()
	repo := newFakeRepo()
	bus := EventBus.New()
	svc := NewService(catalog.Default(), pc, repo, &fakeLocker{}, bus)
	return svc, pc, repo, bus
}

func TestBeginUnknownProductNeverReachesCollaborator(t *testing.T) {
	svc, pc, _, _ := newTestService(t)

	_, err := svc.Begin(context.Background(), "no-such-product", 100, "a@b.test")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, "PRODUCT_NOT_FOUND", errs.CodeOf(err))
	assert.Zero(t, pc.createCalls)
}

func TestBeginUsesCatalogPrice(t *testing.T) {
	svc, pc, repo, _ := newTestService(t)

	secret, err := svc.Begin(context.Background(), "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1_secret", secret)
	assert.Equal(t, 1, pc.createCalls)
	assert.Equal(t, int64(24999), pc.lastParams.AmountCents)
	assert.Equal(t, "usd", pc.lastParams.Currency)
	assert.Equal(t, "Exclusive Wine Collection", pc.lastParams.ProductName)

	shadow := repo.shadows["cs_test_1"]
	require.NotNil(t, shadow)
	assert.Equal(t, domain.SessionStatusOpen, shadow.Status)
	assert.Equal(t, int64(100), shadow.UserID)
}

func TestBeginUnauthenticated(t *testing.T) {
	svc, pc, _, _ := newTestService(t)

	_, err := svc.Begin(context.Background(), "luxury-timepiece", 0, "")
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
	assert.Zero(t, pc.createCalls)
}

func TestGetStatusIsReadOnly(t *testing.T) {
	svc, pc, repo, _ := newTestService(t)

	_, err := svc.Begin(context.Background(), "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)
	pc.markPaid("cs_test_1")

	st, err := svc.GetStatus(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, payments.PaymentStatusPaid, st.PaymentStatus)
	assert.Equal(t, "pi_test_1", st.PaymentIntentRef)
	assert.Empty(t, repo.orders)
}

func TestFinalizePaidSession(t *testing.T) {
	svc, pc, repo, bus := newTestService(t)
	ctx := context.Background()

	var published []OrderCompleted
	require.NoError(t, bus.Subscribe(TopicOrderCompleted, func(ev OrderCompleted) {
		published = append(published, ev)
	}))

	_, err := svc.Begin(ctx, "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)
	pc.markPaid("cs_test_1")

	order, err := svc.Finalize(ctx, "cs_test_1", "exclusive-wine-collection", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(24999), order.TotalPriceCents)
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "exclusive-wine-collection", order.Items[0].ProductID)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.Equal(t, int64(24999), order.Items[0].PriceCents)

	assert.Equal(t, domain.SessionStatusCompleted, repo.shadows["cs_test_1"].Status)

	require.Len(t, published, 1)
	assert.Equal(t, order.ID, published[0].OrderID)
	assert.Equal(t, int64(24999), published[0].TotalCents)
}

func TestFinalizeUnpaidSessionRefused(t *testing.T) {
	svc, _, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Begin(ctx, "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, "cs_test_1", "exclusive-wine-collection", 100)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, "SESSION_NOT_PAID", errs.CodeOf(err))
	assert.Empty(t, repo.orders)
	assert.Equal(t, domain.SessionStatusOpen, repo.shadows["cs_test_1"].Status)
}

func TestFinalizeUnknownSession(t *testing.T) {
	svc, pc, _, _ := newTestService(t)

	_, err := svc.Finalize(context.Background(), "cs_forged", "luxury-timepiece", 100)
	require.Error(t, err)
	assert.Equal(t, "SESSION_NOT_FOUND", errs.CodeOf(err))
	assert.Zero(t, pc.retrieveCalls)
}

func TestFinalizeTwiceYieldsOneOrder(t *testing.T) {
	svc, pc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Begin(ctx, "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)
	pc.markPaid("cs_test_1")

	_, err = svc.Finalize(ctx, "cs_test_1", "exclusive-wine-collection", 100)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, "cs_test_1", "exclusive-wine-collection", 100)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	assert.Len(t, repo.orders, 1)
}

func TestFinalizeExpiredSession(t *testing.T) {
	svc, pc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Begin(ctx, "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)
	pc.sessions["cs_test_1"].Status = payments.SessionStatusExpired

	_, err = svc.Finalize(ctx, "cs_test_1", "exclusive-wine-collection", 100)
	require.Error(t, err)
	assert.Equal(t, "SESSION_EXPIRED", errs.CodeOf(err))
	assert.Equal(t, domain.SessionStatusExpired, repo.shadows["cs_test_1"].Status)
	assert.Empty(t, repo.orders)
}

func TestReconcilePaidSession(t *testing.T) {
	svc, pc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Begin(ctx, "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)
	pc.markPaid("cs_test_1")

	require.NoError(t, svc.Reconcile(ctx, "cs_test_1"))
	require.Len(t, repo.orders, 1)
	assert.Equal(t, int64(100), repo.orders[0].UserID)
	assert.Equal(t, domain.SessionStatusCompleted, repo.shadows["cs_test_1"].Status)

	// a second sweep over the same session is a no-op
	require.NoError(t, svc.Reconcile(ctx, "cs_test_1"))
	assert.Len(t, repo.orders, 1)
}

func TestReconcileLeavesUnpaidOpen(t *testing.T) {
	svc, _, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Begin(ctx, "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)

	require.NoError(t, svc.Reconcile(ctx, "cs_test_1"))
	assert.Empty(t, repo.orders)
	assert.Equal(t, domain.SessionStatusOpen, repo.shadows["cs_test_1"].Status)
}

func TestListUserOrders(t *testing.T) {
	svc, pc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListUserOrders(ctx, 0)
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))

	_, err = svc.Begin(ctx, "exclusive-wine-collection", 100, "a@b.test")
	require.NoError(t, err)
	pc.markPaid("cs_test_1")
	_, err = svc.Finalize(ctx, "cs_test_1", "exclusive-wine-collection", 100)
	require.NoError(t, err)

	orders, err := svc.ListUserOrders(ctx, 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	orders, err = svc.ListUserOrders(ctx, 200)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
