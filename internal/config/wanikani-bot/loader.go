package wanikani_bot_config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/spf13/viper"
)

const DefaultPath = "config/wanikani-bot.yaml"

// PathFromEnv returns WKBOT_CONFIG or DefaultPath.
func PathFromEnv() string {
	if p := os.Getenv("WKBOT_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the config at path and validates it for a reminder run.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads the yaml file at path (a missing file is fine) and applies defaults and
// environment overrides. Env keys are the yaml keys with "." -> "_", upper-cased:
// WANIKANI_API_KEY, NOTIFY_CHANNEL, NOTIFY_SMS_AUTH_TOKEN...
func Read(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: read %s: %w", study.ErrConfiguration, path, err)
		}
	}

	v.SetDefault("app.name", "wanikani-bot")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.version", "dev")

	v.SetDefault("run.timeout", "2m")

	v.SetDefault("wanikani.base_url", "https://api.wanikani.com/v2")
	v.SetDefault("wanikani.api_key", "")
	v.SetDefault("wanikani.revision", "20170710")
	v.SetDefault("wanikani.retry_attempts", 1)
	v.SetDefault("wanikani.max_pages", 5)

	v.SetDefault("http.timeout", "15s")
	v.SetDefault("http.user_agent", "wanikani-bot/1.0")
	v.SetDefault("http.verify_tls", true)

	v.SetDefault("study.struggling", true)
	v.SetDefault("study.accuracy_threshold", 75)
	v.SetDefault("study.max_struggling_items", 100)
	v.SetDefault("study.max_items_per_session", 8)
	v.SetDefault("study.send_prompt", true)
	v.SetDefault("study.notify_when_nothing_due", true)

	v.SetDefault("keyring.enable", true)
	v.SetDefault("keyring.service", "wanikani-bot")
	v.SetDefault("keyring.key", "wanikani_api_key")
	v.SetDefault("keyring.file_dir", "~/.config/wanikani-bot/credentials")

	v.SetDefault("notify.channel", "email")
	v.SetDefault("notify.smtp.addr", "localhost:1025")
	v.SetDefault("notify.smtp.from", "wanikani-bot@localhost")
	v.SetDefault("notify.smtp.to", "")
	v.SetDefault("notify.smtp.user", "")
	v.SetDefault("notify.smtp.password", "")
	v.SetDefault("notify.smtp.use_tls", false)
	v.SetDefault("notify.smtp.timeout", "10s")
	v.SetDefault("notify.smtp.subj_prefix", "[WaniKani]")
	v.SetDefault("notify.webhook.url", "")
	v.SetDefault("notify.sms.base_url", "https://api.twilio.com/2010-04-01")
	v.SetDefault("notify.sms.account_sid", "")
	v.SetDefault("notify.sms.auth_token", "")
	v.SetDefault("notify.sms.from", "")
	v.SetDefault("notify.sms.to", "")
	v.SetDefault("notify.sms.max_runes", 1500)

	v.SetDefault("coach.enable", false)
	v.SetDefault("coach.api_key", "")
	v.SetDefault("coach.base_url", "")
	v.SetDefault("coach.model", "gpt-4o-mini")
	v.SetDefault("coach.max_tokens", 600)
	v.SetDefault("coach.timeout", "30s")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "wanikani-bot")
	v.SetDefault("metrics.timeout", "5s")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "wanikani-bot")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", study.ErrConfiguration, err)
	}
	return &cfg, nil
}

// Validate checks what can be checked before any network call.
// The WaniKani token is not checked here, it may still come from the keyring.
func (c *Config) Validate() error {
	var problems []string
	if c.WaniKani.BaseURL == "" {
		problems = append(problems, "wanikani.base_url is empty")
	}
	if c.Study.AccuracyThreshold <= 0 || c.Study.AccuracyThreshold > 100 {
		problems = append(problems, "study.accuracy_threshold must be in 1..100")
	}
	switch strings.ToLower(c.Notify.Channel) {
	case "email":
		if c.Notify.SMTP.To == "" {
			problems = append(problems, "notify.smtp.to is empty")
		}
		if c.Notify.SMTP.Addr == "" {
			problems = append(problems, "notify.smtp.addr is empty")
		}
	case "webhook":
		if c.Notify.Webhook.URL == "" {
			problems = append(problems, "notify.webhook.url is empty")
		}
	case "sms":
		s := c.Notify.SMS
		if s.AccountSID == "" || s.AuthToken == "" || s.From == "" || s.To == "" {
			problems = append(problems, "notify.sms needs account_sid, auth_token, from and to")
		}
	default:
		problems = append(problems, fmt.Sprintf("notify.channel %q is not one of email, webhook, sms", c.Notify.Channel))
	}
	if c.Coach.Enable && c.Coach.APIKey == "" {
		problems = append(problems, "coach.api_key is empty while coach.enable is set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", study.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}
