package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strings"
	"time"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

var _ study.Sender = (*Mailer)(nil)

type Mailer struct {
	addr       string
	auth       smtp.Auth
	useTLS     bool
	timeout    time.Duration
	from       string
	to         string
	subjPrefix string

	now func() time.Time
	log *zap.Logger
}

func NewMailer(cfg config.SMTP) *Mailer {
	var auth smtp.Auth
	if cfg.User != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, host(cfg.Addr))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailer{
		addr:       cfg.Addr,
		auth:       auth,
		useTLS:     cfg.UseTLS,
		timeout:    timeout,
		from:       cfg.From,
		to:         cfg.To,
		subjPrefix: cfg.SubjPrefix,
		now:        time.Now,
		log:        zap.L().With(zap.String("component", "notifier.mailer")),
	}
}

func (m *Mailer) WithLogger(l *zap.Logger) *Mailer {
	if l == nil {
		return m
	}
	cp := *m
	cp.log = l.With(zap.String("component", "notifier.mailer"))
	return &cp
}

func (m *Mailer) Send(ctx context.Context, msg study.Message) error {
	subj := strings.TrimSpace(m.subjPrefix + " " + msg.Subject)
	raw, env, err := m.compose(subj, msg.Body)
	if err != nil {
		return fmt.Errorf("compose email: %w", err)
	}

	start := time.Now()
	log := m.log.With(
		zap.String("smtp_addr", m.addr),
		zap.Bool("tls", m.useTLS),
		zap.String("to", m.to),
		zap.String("subject", subj),
		zap.String("kind", msg.Kind),
	)

	log.Debug("sending email...")
	if err := m.deliver(ctx, env, raw); err != nil {
		log.Error("email not sent", zap.Error(err))
		return err
	}
	log.Info("email sent", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// envelope holds the bare addresses for MAIL FROM and RCPT TO; display names
// belong in the headers only.
type envelope struct {
	from, to string
}

// compose renders an RFC 5322 message. Subjects carry kana and emoji, so the
// header is RFC 2047 encoded and the body quoted-printable.
func (m *Mailer) compose(subject, body string) ([]byte, envelope, error) {
	from, err := mail.ParseAddress(m.from)
	if err != nil {
		return nil, envelope{}, fmt.Errorf("%w: smtp.from %q: %w", study.ErrConfiguration, m.from, err)
	}
	to, err := mail.ParseAddress(m.to)
	if err != nil {
		return nil, envelope{}, fmt.Errorf("%w: smtp.to %q: %w", study.ErrConfiguration, m.to, err)
	}
	env := envelope{from: from.Address, to: to.Address}

	var h mail.Header
	h.SetDate(m.now())
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", []*mail.Address{to})
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	if err := h.GenerateMessageID(); err != nil {
		return nil, envelope{}, err
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, envelope{}, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, envelope{}, err
	}
	if err := w.Close(); err != nil {
		return nil, envelope{}, err
	}
	return buf.Bytes(), env, nil
}

func (m *Mailer) deliver(ctx context.Context, env envelope, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", study.ErrNetwork, m.addr, err)
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < m.timeout {
		_ = conn.SetDeadline(dl)
	} else {
		_ = conn.SetDeadline(time.Now().Add(m.timeout))
	}

	c, err := smtp.NewClient(conn, host(m.addr))
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: smtp client: %w", study.ErrNetwork, err)
	}
	defer func() { _ = c.Close() }()

	if !m.useTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host(m.addr), MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("smtp STARTTLS: %w", err)
			}
		}
	}
	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := c.Mail(env.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(env.to); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("%w: smtp write: %w", study.ErrNetwork, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end of DATA: %w", err)
	}
	return c.Quit()
}

func (m *Mailer) dial(ctx context.Context) (net.Conn, error) {
	d := &net.Dialer{Timeout: m.timeout}
	if m.useTLS {
		td := &tls.Dialer{NetDialer: d, Config: &tls.Config{ServerName: host(m.addr), MinVersion: tls.VersionTLS12}}
		return td.DialContext(ctx, "tcp", m.addr)
	}
	return d.DialContext(ctx, "tcp", m.addr)
}

func host(addr string) string {
	if h, _, err := net.SplitHostPort(addr); err == nil {
		return h
	}
	return addr
}
