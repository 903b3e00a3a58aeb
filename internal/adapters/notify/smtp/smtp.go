// Package smtp entrega notificaciones por email con go-mail.
package smtp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"pet-reminders/internal/platform/logger"
	"pet-reminders/internal/ports/notify"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SSL      bool
	Timeout  time.Duration
}

// sender es la parte de *mail.Client que usamos.
type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

type Channel struct {
	from   string
	client sender
	log    logger.Logger
}

var _ notify.Channel = (*Channel)(nil)

func New(cfg Config, log logger.Logger) (*Channel, error) {
	if strings.TrimSpace(cfg.Host) == "" || strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp: host and from are required")
	}
	opts := make([]mail.Option, 0, 6)
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return newWithSender(cfg.From, c, log), nil
}

func newWithSender(from string, s sender, log logger.Logger) *Channel {
	if log == nil {
		log = logger.Nop()
	}
	return &Channel{from: from, client: s, log: log.With(map[string]any{"channel": "email"})}
}

func (c *Channel) Name() string { return "email" }

// Send arma el mensaje (HTML + alternativa texto) y lo envía.
// Cualquier error queda en el log y se reporta como false.
func (c *Channel) Send(ctx context.Context, msg notify.Message) bool {
	if !msg.Valid() {
		c.log.Warn("invalid message, not sent", map[string]any{"to": msg.To})
		return false
	}

	m, err := c.build(msg)
	if err != nil {
		c.log.Warn("build email failed", map[string]any{"to": msg.To, "error": err})
		return false
	}
	if err := c.client.DialAndSendWithContext(ctx, m); err != nil {
		c.log.Error("send email failed", map[string]any{"to": msg.To, "error": err})
		return false
	}
	return true
}

func (c *Channel) build(msg notify.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return nil, err
	}
	if err := m.To(msg.To); err != nil {
		return nil, err
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	if strings.TrimSpace(msg.TextBody) != "" {
		m.AddAlternativeString(mail.TypeTextPlain, msg.TextBody)
	}
	return m, nil
}
