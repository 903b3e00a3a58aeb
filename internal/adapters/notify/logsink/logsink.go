// Package logsink es el canal de desarrollo: solo deja el mensaje en el log.
package logsink

import (
	"context"

	"pet-reminders/internal/platform/logger"
	"pet-reminders/internal/ports/notify"
)

type Channel struct {
	log logger.Logger
}

var _ notify.Channel = (*Channel)(nil)

func New(log logger.Logger) *Channel {
	if log == nil {
		log = logger.Nop()
	}
	return &Channel{log: log.With(map[string]any{"channel": "log"})}
}

func (c *Channel) Name() string { return "log" }

func (c *Channel) Send(ctx context.Context, msg notify.Message) bool {
	if !msg.Valid() {
		return false
	}
	c.log.Info("notification", map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return true
}
