package wanikani

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/NordCoder/wanikani-bot/internal/obs/retry"
	"go.uber.org/zap"
)

var _ study.StudyAPI = (*Client)(nil)

const maxBody = 8 << 20

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type Client struct {
	baseURL  string
	cred     study.Credential
	revision string
	attempts int
	maxPages int

	http  *http.Client
	clock study.Clock
	log   *zap.Logger
}

func New(cfg config.WaniKani, cred study.Credential, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		cred:     cred,
		revision: cfg.Revision,
		attempts: cfg.RetryAttempts,
		maxPages: maxPages,
		http:     hc,
		clock:    systemClock{},
		log:      zap.L().With(zap.String("component", "wanikani.client")),
	}
}

func (c *Client) WithLogger(l *zap.Logger) *Client {
	if l == nil {
		return c
	}
	cp := *c
	cp.log = l.With(zap.String("component", "wanikani.client"))
	return &cp
}

func (c *Client) WithClock(clk study.Clock) *Client {
	if clk == nil {
		return c
	}
	cp := *c
	cp.clock = clk
	return &cp
}

// get fetches url (absolute, or a path relative to the base URL) into out.
// 429 is the only status that may be retried, and only when attempts > 1.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = c.baseURL + url
	}

	var retryAfter time.Duration
	p := retry.RateLimitPolicy("wanikani.get", c.attempts, c.log)
	p.Backoff = retry.After{Fallback: p.Backoff, Hint: func() time.Duration { return retryAfter }}

	return retry.Do(ctx, func() error {
		body, wait, err := c.do(ctx, url)
		retryAfter = wait
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decode %s: %w", study.ErrResponse, redactURL(url), err)
		}
		return nil
	}, p)
}

func (c *Client) do(ctx context.Context, url string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request: %w", study.ErrConfiguration, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cred.Token)
	req.Header.Set("Accept", "application/json")
	if c.revision != "" {
		req.Header.Set("Wanikani-Revision", c.revision)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("url", redactURL(url)), zap.Error(err))
		return nil, 0, fmt.Errorf("%w: GET %s: %w", study.ErrNetwork, redactURL(url), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read %s: %w", study.ErrNetwork, redactURL(url), err)
	}
	c.log.Debug("request done",
		zap.String("url", redactURL(url)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	switch code := resp.StatusCode; {
	case code >= 200 && code <= 299:
		return body, 0, nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, 0, fmt.Errorf("%w: GET %s: %d %s", study.ErrUnauthorized, redactURL(url), code, apiMessage(body))
	case code == http.StatusTooManyRequests:
		return nil, parseRetryAfter(resp.Header, c.clock.Now()), fmt.Errorf("%w: %w: GET %s: rate limited", study.ErrResponse, retry.ErrRetryable, redactURL(url))
	default:
		return nil, 0, fmt.Errorf("%w: GET %s: %d %s", study.ErrResponse, redactURL(url), code, apiMessage(body))
	}
}

// parseRetryAfter reads Retry-After (seconds) or WaniKani's RateLimit-Reset (unix time).
func parseRetryAfter(h http.Header, now time.Time) time.Duration {
	if s := h.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	if s := h.Get("RateLimit-Reset"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			if d := time.Unix(n, 0).Sub(now); d > 0 {
				return d
			}
		}
	}
	return 0
}

func apiMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return strings.TrimSpace(string(body))
}

// redactURL drops the query string; ids lists get long.
func redactURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

func missing(what string) error {
	return fmt.Errorf("%w: %s", study.ErrResponse, what)
}

// IsRateLimited reports whether err came from a 429 that was not retried away.
func IsRateLimited(err error) bool { return errors.Is(err, retry.ErrRetryable) }
