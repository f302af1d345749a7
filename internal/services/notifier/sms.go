package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"go.uber.org/zap"
)

var _ study.Sender = (*SMS)(nil)

// SMS sends through the Twilio Messages REST API.
type SMS struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	to         string
	maxRunes   int

	http *http.Client
	log  *zap.Logger
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

func NewSMS(cfg config.SMS, hc *http.Client) *SMS {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	maxRunes := cfg.MaxRunes
	if maxRunes <= 3 {
		maxRunes = 1500
	}
	return &SMS{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		to:         cfg.To,
		maxRunes:   maxRunes,
		http:       hc,
		log:        zap.L().With(zap.String("component", "notifier.sms")),
	}
}

func (s *SMS) WithLogger(l *zap.Logger) *SMS {
	if l == nil {
		return s
	}
	cp := *s
	cp.log = l.With(zap.String("component", "notifier.sms"))
	return &cp
}

func (s *SMS) Send(ctx context.Context, msg study.Message) error {
	// an SMS has no subject line
	text := Truncate(msg.Subject+"\n\n"+msg.Body, s.maxRunes)

	form := url.Values{}
	form.Set("To", s.to)
	form.Set("From", s.from)
	form.Set("Body", text)

	endpoint := s.baseURL + "/Accounts/" + url.PathEscape(s.accountSID) + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: sms request: %w", study.ErrConfiguration, err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		s.log.Error("sms post failed", zap.Error(err))
		return fmt.Errorf("%w: sms post: %w", study.ErrNetwork, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var te twilioError
		_ = json.Unmarshal(body, &te)
		s.log.Error("sms rejected",
			zap.Int("status", resp.StatusCode),
			zap.Int("twilio_code", te.Code),
			zap.String("message", te.Message),
		)
		return fmt.Errorf("sms rejected: %d %s (code %d)", resp.StatusCode, te.Message, te.Code)
	}

	var tm twilioMessage
	_ = json.Unmarshal(body, &tm)
	s.log.Info("sms sent",
		zap.String("sid", tm.SID),
		zap.String("kind", msg.Kind),
		zap.Int("runes", utf8.RuneCountInString(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Truncate cuts s to at most n runes, ending with "..." when it had to cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 3 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-3]) + "..."
}
