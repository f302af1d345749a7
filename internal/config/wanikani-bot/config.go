package wanikani_bot_config

import (
	"time"

	"github.com/NordCoder/wanikani-bot/internal/obs"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Run struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type WaniKani struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Revision string `mapstructure:"revision"`
	// RetryAttempts applies to HTTP 429 only; 1 means a single request.
	RetryAttempts int `mapstructure:"retry_attempts"`
	MaxPages      int `mapstructure:"max_pages"`
}

type HTTP struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	VerifyTLS bool          `mapstructure:"verify_tls"`
}

type Study struct {
	Struggling           bool `mapstructure:"struggling"`
	AccuracyThreshold    int  `mapstructure:"accuracy_threshold"`
	MaxStrugglingItems   int  `mapstructure:"max_struggling_items"`
	MaxItemsPerSession   int  `mapstructure:"max_items_per_session"`
	SendPrompt           bool `mapstructure:"send_prompt"`
	NotifyWhenNothingDue bool `mapstructure:"notify_when_nothing_due"`
}

type Keyring struct {
	Enable  bool   `mapstructure:"enable"`
	Service string `mapstructure:"service"`
	Key     string `mapstructure:"key"`
	FileDir string `mapstructure:"file_dir"`
}

type SMTP struct {
	Addr       string        `mapstructure:"addr"`
	From       string        `mapstructure:"from"`
	To         string        `mapstructure:"to"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SubjPrefix string        `mapstructure:"subj_prefix"`
}

type Webhook struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

type SMS struct {
	BaseURL    string `mapstructure:"base_url"`
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
	MaxRunes   int    `mapstructure:"max_runes"`
}

type Notify struct {
	Channel string  `mapstructure:"channel"` // email | webhook | sms
	SMTP    SMTP    `mapstructure:"smtp"`
	Webhook Webhook `mapstructure:"webhook"`
	SMS     SMS     `mapstructure:"sms"`
}

type Coach struct {
	Enable    bool          `mapstructure:"enable"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type Metrics struct {
	PushgatewayURL string        `mapstructure:"pushgateway_url"`
	Job            string        `mapstructure:"job"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func (m *Metrics) AsPushConfig() obs.PushConfig {
	return obs.PushConfig{URL: m.PushgatewayURL, Job: m.Job, Timeout: m.Timeout}
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	App      App      `mapstructure:"app"`
	Run      Run      `mapstructure:"run"`
	WaniKani WaniKani `mapstructure:"wanikani"`
	HTTP     HTTP     `mapstructure:"http"`
	Study    Study    `mapstructure:"study"`
	Keyring  Keyring  `mapstructure:"keyring"`
	Notify   Notify   `mapstructure:"notify"`
	Coach    Coach    `mapstructure:"coach"`
	Metrics  Metrics  `mapstructure:"metrics"`
	OTEL     OTEL     `mapstructure:"otel"`
	Log      Log      `mapstructure:"log"`
}

func (c *Config) AsLoggerConfig(runID string) obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
		RunID:  runID,
	}
}
