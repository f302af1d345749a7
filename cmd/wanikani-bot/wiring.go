package main

import (
	"time"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/credential"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/NordCoder/wanikani-bot/internal/obs"
	"github.com/NordCoder/wanikani-bot/internal/repository/httpx"
	"github.com/NordCoder/wanikani-bot/internal/repository/wanikani"
	"github.com/NordCoder/wanikani-bot/internal/services/coach"
	"github.com/NordCoder/wanikani-bot/internal/services/notifier"
	"github.com/NordCoder/wanikani-bot/internal/services/reminder"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func loadCredential(cfg *config.Config, l *zap.Logger) (study.Credential, error) {
	ld := credential.Loader{
		Token:      cfg.WaniKani.APIKey,
		KeyringKey: cfg.Keyring.Key,
		Log:        obs.Component(l, "credential"),
	}
	if cfg.Keyring.Enable {
		ld.OpenKeyring = credential.SystemKeyring(cfg.Keyring)
	}
	return ld.Load()
}

func wiring(cfg *config.Config, cred study.Credential, reg prometheus.Registerer, l *zap.Logger) (*reminder.Runner, error) {
	api := wanikani.New(cfg.WaniKani, cred, httpx.NewHTTPClient(cfg.HTTP, "wanikani")).WithLogger(l)

	out, err := notifier.New(cfg.Notify, httpx.NewHTTPClient(cfg.HTTP, "notify"), l)
	if err != nil {
		return nil, err
	}

	uc := &reminder.Handler{
		API:   api,
		Out:   out,
		Clock: systemClock{},
		Log:   obs.Component(l, "reminder"),
		Opts: reminder.Options{
			Struggling:           cfg.Study.Struggling,
			AccuracyThreshold:    cfg.Study.AccuracyThreshold,
			MaxStrugglingItems:   cfg.Study.MaxStrugglingItems,
			MaxItemsPerSession:   cfg.Study.MaxItemsPerSession,
			SendPrompt:           cfg.Study.SendPrompt,
			NotifyWhenNothingDue: cfg.Study.NotifyWhenNothingDue,
		},
	}
	if cfg.Coach.Enable {
		// completions are slow, coach.timeout bounds them instead of http.timeout
		hcfg := cfg.HTTP
		hcfg.Timeout = max(hcfg.Timeout, cfg.Coach.Timeout)
		uc.Coach = coach.New(cfg.Coach, httpx.NewHTTPClient(hcfg, "coach")).WithLogger(l)
	}

	return reminder.NewRunner(l, uc, reg), nil
}
