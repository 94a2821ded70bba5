package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWebhookNotifierDisabled(t *testing.T) {
	assert.Nil(t, NewWebhookNotifier("", time.Second, 0))

	var n *WebhookNotifier
	assert.Error(t, n.Notify(context.Background(), Message{Text: "x"}))
}

func TestWebhookNotifierPostsFormattedText(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second, 0)
	err := n.Notify(context.Background(), Message{Title: "Nova denúncia", Text: "2026-000123", Severity: SeverityWarning})
	require.NoError(t, err)

	assert.Equal(t, ":warning: *Nova denúncia*\n2026-000123", body["text"])
}

func TestWebhookNotifierRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second, 2)
	require.NoError(t, n.Notify(context.Background(), Message{Text: "ok"}))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestWebhookNotifierReportsClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second, 0)
	err := n.Notify(context.Background(), Message{Text: "x"})
	require.EqualError(t, err, "webhook respondeu 403")
}
