package notifier

import (
	"fmt"
	"net/http"
	"strings"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"go.uber.org/zap"
)

// New returns the sender for cfg.Channel. hc is used by the HTTP based channels.
func New(cfg config.Notify, hc *http.Client, l *zap.Logger) (study.Sender, error) {
	switch strings.ToLower(cfg.Channel) {
	case "email":
		return NewMailer(cfg.SMTP).WithLogger(l), nil
	case "webhook":
		return NewWebhook(cfg.Webhook, hc).WithLogger(l), nil
	case "sms":
		return NewSMS(cfg.SMS, hc).WithLogger(l), nil
	default:
		return nil, fmt.Errorf("%w: unknown notify channel %q", study.ErrConfiguration, cfg.Channel)
	}
}
