package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowkeylabs/lowkey/internal/errs"
)

func TestTelegramNotify(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, jsoniter.Unmarshal(raw, &gotBody))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	tg := NewTelegram("123:abc", "-100555", ts.URL)
	require.True(t, tg.Configured())
	require.NoError(t, tg.Notify(context.Background(), "hello operator"))

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "-100555", gotBody["chat_id"])
	assert.Equal(t, "hello operator", gotBody["text"])
}

func TestTelegramUnconfiguredIsNoop(t *testing.T) {
	tg := NewTelegram("", "", "http://unused")
	assert.False(t, tg.Configured())
	assert.NoError(t, tg.Notify(context.Background(), "dropped"))
}

func TestTelegramRejectedMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer ts.Close()

	tg := NewTelegram("123:abc", "-100555", ts.URL)
	err := tg.Notify(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstream, errs.KindOf(err))
}
