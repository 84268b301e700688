package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"breakoutScanner/internal/adapters/logger"
	"breakoutScanner/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *Notifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n, err := New(Config{
		BotToken: "TOKEN",
		ChatID:   "42",
		APIURL:   srv.URL,
		Logger:   logger.NewWithWriter(io.Discard, logger.LevelError),
	})
	require.NoError(t, err)
	require.True(t, n.IsEnabled())
	return n
}

func TestSendText(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "*hello*", payload["text"])
		assert.Equal(t, "Markdown", payload["parse_mode"])

		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	assert.NoError(t, n.SendText(context.Background(), "*hello*"))
}

func TestSendImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendPhoto", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("chat_id"))
		assert.Equal(t, "caption text", r.FormValue("caption"))
		assert.Equal(t, "Markdown", r.FormValue("parse_mode"))

		f, hdr, err := r.FormFile("photo")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "chart.png", hdr.Filename)
		got, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, png, got)

		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	assert.NoError(t, n.SendImage(context.Background(), png, "caption text"))
}

func TestSendImage_Empty(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	assert.ErrorIs(t, n.SendImage(context.Background(), nil, "x"), ports.ErrNotificationFailed)
}

func TestSend_APIError(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
	})

	err := n.SendText(context.Background(), "_broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotificationFailed)
	assert.Contains(t, err.Error(), "can't parse entities")
	assert.NotContains(t, err.Error(), "TOKEN")
}

func TestSend_NotOKBody(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})
	assert.ErrorIs(t, n.SendText(context.Background(), "x"), ports.ErrNotificationFailed)
}

func TestSend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	n, err := New(Config{BotToken: "TOKEN", ChatID: "1", APIURL: url, Logger: logger.NewWithWriter(io.Discard, logger.LevelError)})
	require.NoError(t, err)

	err = n.SendText(context.Background(), "x")
	assert.ErrorIs(t, err, ports.ErrNotificationFailed)
	assert.NotContains(t, err.Error(), "TOKEN")
}

func TestDisabledNotifier(t *testing.T) {
	n, err := New(Config{Logger: logger.NewWithWriter(io.Discard, logger.LevelError)})
	require.NoError(t, err)
	assert.False(t, n.IsEnabled())
	assert.NoError(t, n.SendText(context.Background(), "x"))
	assert.NoError(t, n.SendImage(context.Background(), []byte{1}, "x"))
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
