package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/stretchr/testify/require"
)

func TestWebhook_Send(t *testing.T) {
	var got WebhookPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(config.Webhook{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer hook"}}, srv.Client())
	err := wh.Send(context.Background(), study.Message{Subject: "WaniKani", Body: "Reviews: 5", Kind: study.KindDigest})
	require.NoError(t, err)

	require.Equal(t, "Bearer hook", auth)
	require.Equal(t, "WaniKani\n\nReviews: 5", got.Text)
	require.Equal(t, got.Text, got.Content)
	require.Equal(t, study.KindDigest, got.Kind)
}

func TestWebhook_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewWebhook(config.Webhook{URL: srv.URL}, srv.Client()).Send(context.Background(), study.Message{Subject: "s"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
	require.Contains(t, err.Error(), "invalid_token")
}

func TestWebhook_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	err := NewWebhook(config.Webhook{URL: srv.URL}, nil).Send(context.Background(), study.Message{Subject: "s"})
	require.ErrorIs(t, err, study.ErrNetwork)
}
