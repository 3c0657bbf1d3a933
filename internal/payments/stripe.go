// Package payments is a thin client for a Stripe-compatible checkout
// session API. It owns the loosely-typed wire shapes; everything it returns
// is already normalized into Session.
package payments

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"

	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"
)

// Session is the normalized view of a collaborator checkout session.
type Session struct {
	ID            string
	ClientSecret  string
	Status        string
	PaymentStatus string
	PaymentIntent string
}

// SessionParams describes the single-line-item session this marketplace
// creates: embedded presentation, no redirect, exact catalog price.
type SessionParams struct {
	ProductID          string
	ProductName        string
	ProductDescription string
	AmountCents        int64
	Currency           string
	CustomerEmail      string
	UserID             int64
}

type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
	}
}

// sessionWire is the collaborator response shape. payment_intent arrives as
// a bare string ID or, when expanded, as an object.
type sessionWire struct {
	ID            string              `json:"id"`
	ClientSecret  string              `json:"client_secret"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	PaymentIntent jsoniter.RawMessage `json:"payment_intent"`
}

type errorWire struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (w sessionWire) toSession() *Session {
	s := &Session{
		ID:            w.ID,
		ClientSecret:  w.ClientSecret,
		Status:        w.Status,
		PaymentStatus: w.PaymentStatus,
	}
	if len(w.PaymentIntent) > 0 {
		if w.PaymentIntent[0] == '"' {
			_ = jsoniter.Unmarshal(w.PaymentIntent, &s.PaymentIntent)
		} else {
			var pi struct {
				ID string `json:"id"`
			}
			if err := jsoniter.Unmarshal(w.PaymentIntent, &pi); err == nil {
				s.PaymentIntent = pi.ID
			}
		}
	}
	return s
}

// CreateSession opens an embedded-mode checkout session for one line item
// at the given price, tagged with user and product metadata for later
// reconciliation.
func (c *Client) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	form := gout.H{
		"mode":                   "payment",
		"ui_mode":                "embedded",
		"redirect_on_completion": "never",
		"line_items[0][quantity]":                                "1",
		"line_items[0][price_data][currency]":                    p.Currency,
		"line_items[0][price_data][unit_amount]":                 strconv.FormatInt(p.AmountCents, 10),
		"line_items[0][price_data][product_data][name]":          p.ProductName,
		"line_items[0][price_data][product_data][description]":   p.ProductDescription,
		"metadata[userId]":    strconv.FormatInt(p.UserID, 10),
		"metadata[productId]": p.ProductID,
	}
	if p.CustomerEmail != "" {
		form["customer_email"] = p.CustomerEmail
	}

	var body []byte
	var code int
	err := gout.New(c.hc).
		POST(c.baseURL+"/v1/checkout/sessions").
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
		SetWWWForm(form).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return nil, errs.Upstream(errors.Wrap(err, "create checkout session"), "PAYMENTS_ERROR", "payments collaborator unreachable")
	}
	return c.decodeSession(body, code)
}

// RetrieveSession reads a session with its payment intent expanded. The
// collaborator is the only authority for whether money actually moved.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	var body []byte
	var code int
	err := gout.New(c.hc).
		GET(c.baseURL+"/v1/checkout/sessions/"+sessionID).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
		SetQuery(gout.H{"expand[]": "payment_intent"}).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return nil, errs.Upstream(errors.Wrap(err, "retrieve checkout session"), "PAYMENTS_ERROR", "payments collaborator unreachable")
	}
	return c.decodeSession(body, code)
}

func (c *Client) decodeSession(body []byte, code int) (*Session, error) {
	if code == http.StatusNotFound {
		return nil, errs.NotFound("SESSION_NOT_FOUND", "checkout session not found")
	}
	if code >= http.StatusBadRequest {
		var ew errorWire
		_ = jsoniter.Unmarshal(body, &ew)
		zap.L().Error("payments collaborator rejected request",
			zap.Int("status", code),
			zap.String("type", ew.Error.Type),
			zap.String("message", ew.Error.Message))
		return nil, errs.Upstream(errors.Errorf("payments api status %d: %s", code, ew.Error.Message),
			"PAYMENTS_ERROR", "payments collaborator returned an error")
	}
	var w sessionWire
	if err := jsoniter.Unmarshal(body, &w); err != nil {
		return nil, errs.Upstream(errors.Wrap(err, "decode session"), "PAYMENTS_ERROR", "payments collaborator returned malformed data")
	}
	return w.toSession(), nil
}
