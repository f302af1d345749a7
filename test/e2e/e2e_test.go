//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/NordCoder/wanikani-bot/internal/repository/httpx"
	"github.com/NordCoder/wanikani-bot/internal/repository/wanikani"
	"github.com/NordCoder/wanikani-bot/internal/services/notifier"
	"github.com/NordCoder/wanikani-bot/internal/services/reminder"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Runs one reminder against the real WaniKani API and a local MailHog:
//
//	docker run -p 1025:1025 -p 8025:8025 mailhog/mailhog
//	E2E_WANIKANI_API_KEY=... go test -tags e2e ./test/e2e/

type cfg struct {
	Token       string
	SMTPAddr    string // localhost:1025
	MailhogBase string // http://localhost:8025
	WaitEmail   time.Duration
}

func loadCfg(t *testing.T) cfg {
	c := cfg{
		Token:       os.Getenv("E2E_WANIKANI_API_KEY"),
		SMTPAddr:    getenv("E2E_SMTP_ADDR", "localhost:1025"),
		MailhogBase: getenv("E2E_MAILHOG_BASE", "http://localhost:8025"),
		WaitEmail:   mustParseDur(getenv("E2E_WAIT_EMAIL", "15s")),
	}
	if c.Token == "" {
		t.Skip("E2E_WANIKANI_API_KEY is not set")
	}
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MailHog API v2 response, only the fields used here
type mailhogMessages struct {
	Count    int          `json:"count"`
	Total    int          `json:"total"`
	Start    int          `json:"start"`
	Messages []mailhogMsg `json:"items"`
}
type mailhogMsg struct {
	To      []mailhogPerson `json:"To"`
	Content struct {
		Headers map[string][]string `json:"Headers"`
		Body    string              `json:"Body"`
	} `json:"Content"`
}
type mailhogPerson struct {
	Mailbox string `json:"Mailbox"`
	Domain  string `json:"Domain"`
}

func (p mailhogPerson) Email() string {
	if p.Domain == "" {
		return p.Mailbox
	}
	return p.Mailbox + "@" + p.Domain
}

func getJSON(t *testing.T, url string, into any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	all, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(all, into))
}

func Test_Reminder_LeadsToEmail(t *testing.T) {
	c := loadCfg(t)
	to := fmt.Sprintf("e2e_%d@wanikani-bot.dev", time.Now().UnixNano())

	httpCfg := config.HTTP{Timeout: 15 * time.Second, UserAgent: "wanikani-bot-e2e", VerifyTLS: true}
	api := wanikani.New(config.WaniKani{
		BaseURL:       "https://api.wanikani.com/v2",
		Revision:      "20170710",
		RetryAttempts: 3,
		MaxPages:      2,
	}, study.Credential{Token: c.Token, Source: "env"}, httpx.NewHTTPClient(httpCfg, "wanikani"))

	mailer := notifier.NewMailer(config.SMTP{
		Addr:       c.SMTPAddr,
		From:       "wanikani-bot@localhost",
		To:         to,
		Timeout:    5 * time.Second,
		SubjPrefix: "[e2e]",
	})

	uc := &reminder.Handler{
		API:   api,
		Out:   mailer,
		Clock: clock{},
		Log:   zap.NewExample(),
		Opts: reminder.Options{
			Struggling:           true,
			AccuracyThreshold:    75,
			MaxStrugglingItems:   20,
			MaxItemsPerSession:   8,
			NotifyWhenNothingDue: true,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	res, err := uc.Run(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, res.Summary.User.Username)
	t.Logf("%s: %d reviews, %d lessons, %d struggling",
		res.Summary.User.Username, res.Summary.ReviewsAvailable, res.Summary.LessonsAvailable, len(res.Struggling))

	deadline := time.Now().Add(c.WaitEmail)
	for time.Now().Before(deadline) {
		for _, m := range fetchMailhog(t, c, to) {
			subj := headerFirst(m.Content.Headers, "Subject")
			if strings.Contains(subj, "WaniKani:") {
				t.Logf("got email: %q", subj)
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatal("email didn't arrive in time")
}

func Test_BadToken_IsUnauthorized(t *testing.T) {
	loadCfg(t)
	hc := httpx.NewHTTPClient(config.HTTP{Timeout: 15 * time.Second, VerifyTLS: true}, "wanikani")
	api := wanikani.New(config.WaniKani{BaseURL: "https://api.wanikani.com/v2", Revision: "20170710"},
		study.Credential{Token: "not-a-token", Source: "env"}, hc)

	_, err := api.GetUser(context.Background())
	require.ErrorIs(t, err, study.ErrUnauthorized)
}

type clock struct{}

func (clock) Now() time.Time { return time.Now().UTC() }

func fetchMailhog(t *testing.T, c cfg, toEmail string) []mailhogMsg {
	t.Helper()
	var out mailhogMessages
	getJSON(t, c.MailhogBase+"/api/v2/messages", &out)
	var res []mailhogMsg
	for _, m := range out.Messages {
		for _, rcpt := range m.To {
			if strings.EqualFold(rcpt.Email(), toEmail) {
				res = append(res, m)
				break
			}
		}
	}
	return res
}

func headerFirst(h map[string][]string, key string) string {
	for k, v := range h {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
