package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowkeylabs/lowkey/internal/errs"
)

func TestCreateSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "embedded", r.PostForm.Get("ui_mode"))
		assert.Equal(t, "never", r.PostForm.Get("redirect_on_completion"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "24999", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "Exclusive Wine Collection", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "100", r.PostForm.Get("metadata[userId]"))
		assert.Equal(t, "exclusive-wine-collection", r.PostForm.Get("metadata[productId]"))
		assert.Equal(t, "a@b.test", r.PostForm.Get("customer_email"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","client_secret":"cs_test_1_secret","status":"open","payment_status":"unpaid"}`))
	}))
	defer ts.Close()

	c := NewClient("sk_test_123", ts.URL, 5*time.Second)
	sess, err := c.CreateSession(context.Background(), SessionParams{
		ProductID:     "exclusive-wine-collection",
		ProductName:   "Exclusive Wine Collection",
		AmountCents:   24999,
		Currency:      "usd",
		CustomerEmail: "a@b.test",
		UserID:        100,
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "cs_test_1_secret", sess.ClientSecret)
	assert.Equal(t, SessionStatusOpen, sess.Status)
	assert.Equal(t, PaymentStatusUnpaid, sess.PaymentStatus)
}

func TestRetrieveSessionExpandsPaymentIntent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		assert.Equal(t, "payment_intent", r.URL.Query().Get("expand[]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","status":"complete","payment_status":"paid","payment_intent":{"id":"pi_test_1","status":"succeeded"}}`))
	}))
	defer ts.Close()

	c := NewClient("sk_test_123", ts.URL, 5*time.Second)
	sess, err := c.RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, sess.PaymentStatus)
	assert.Equal(t, "pi_test_1", sess.PaymentIntent)
}

func TestRetrieveSessionBarePaymentIntent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","status":"complete","payment_status":"paid","payment_intent":"pi_test_2"}`))
	}))
	defer ts.Close()

	c := NewClient("sk_test_123", ts.URL, 5*time.Second)
	sess, err := c.RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "pi_test_2", sess.PaymentIntent)
}

func TestRetrieveSessionNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout session"}}`))
	}))
	defer ts.Close()

	c := NewClient("sk_test_123", ts.URL, 5*time.Second)
	_, err := c.RetrieveSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, "SESSION_NOT_FOUND", errs.CodeOf(err))
}

func TestCreateSessionUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","message":"declined"}}`))
	}))
	defer ts.Close()

	c := NewClient("sk_test_123", ts.URL, 5*time.Second)
	_, err := c.CreateSession(context.Background(), SessionParams{Currency: "usd", AmountCents: 1})
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstream, errs.KindOf(err))
}
