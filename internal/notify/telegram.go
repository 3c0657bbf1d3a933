// Package notify delivers operator-facing notifications: Telegram messages
// to the configured channel and optional SMTP copies.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/guonaihong/gout"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Telegram sends messages through the bot sendMessage API. An unconfigured
// notifier is a silent no-op so the rest of the flow never depends on it.
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	hc       *http.Client
}

func NewTelegram(botToken, chatID, baseURL string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  baseURL,
		hc:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Telegram) Configured() bool {
	return t.botToken != "" && t.chatID != ""
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if !t.Configured() {
		zap.L().Warn("telegram notifier not configured, dropping message")
		return nil
	}

	var code int
	err := gout.New(t.hc).
		POST(t.baseURL+"/bot"+t.botToken+"/sendMessage").
		WithContext(ctx).
		SetJSON(gout.H{"chat_id": t.chatID, "text": text}).
		Code(&code).
		Do()
	if err != nil {
		return errs.Upstream(errors.Wrap(err, "telegram sendMessage"), "TELEGRAM_ERROR", "telegram unreachable")
	}
	if code >= http.StatusBadRequest {
		return errs.Upstream(errors.Errorf("telegram api status %d", code), "TELEGRAM_ERROR", "telegram rejected message")
	}
	return nil
}
