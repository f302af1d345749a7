package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"go.uber.org/zap"
)

var _ study.Sender = (*Webhook)(nil)

// WebhookPayload is posted as JSON. "text" alone is enough for Slack and Mattermost
// incoming webhooks; "content" is what Discord reads.
type WebhookPayload struct {
	Text    string `json:"text"`
	Content string `json:"content"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Kind    string `json:"kind"`
}

type Webhook struct {
	url     string
	headers map[string]string
	http    *http.Client
	log     *zap.Logger
}

func NewWebhook(cfg config.Webhook, hc *http.Client) *Webhook {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Webhook{
		url:     cfg.URL,
		headers: cfg.Headers,
		http:    hc,
		log:     zap.L().With(zap.String("component", "notifier.webhook")),
	}
}

func (w *Webhook) WithLogger(l *zap.Logger) *Webhook {
	if l == nil {
		return w
	}
	cp := *w
	cp.log = l.With(zap.String("component", "notifier.webhook"))
	return &cp
}

func (w *Webhook) Send(ctx context.Context, msg study.Message) error {
	text := msg.Subject + "\n\n" + msg.Body
	b, err := json.Marshal(WebhookPayload{
		Text:    text,
		Content: text,
		Subject: msg.Subject,
		Body:    msg.Body,
		Kind:    msg.Kind,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: webhook request: %w", study.ErrConfiguration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := w.http.Do(req)
	if err != nil {
		w.log.Error("webhook post failed", zap.Error(err))
		return fmt.Errorf("%w: webhook post: %w", study.ErrNetwork, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.log.Error("webhook rejected", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	w.log.Info("webhook delivered",
		zap.String("kind", msg.Kind),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
