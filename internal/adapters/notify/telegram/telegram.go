// Package telegram reenvía notificaciones a un chat de Telegram.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-reminders/internal/platform/logger"
	"pet-reminders/internal/ports/notify"
)

// sender es la parte de *tgbotapi.BotAPI que usamos.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Channel struct {
	bot    sender
	chatID int64
	log    logger.Logger
}

var _ notify.Channel = (*Channel)(nil)

// Connect valida el token contra la API (getMe) y arma el canal.
// Pensado para un chat de ops o del hogar: todo mensaje va al chat_id
// configurado y msg.To se ignora.
func Connect(token string, chatID int64, log logger.Logger) (*Channel, error) {
	if strings.TrimSpace(token) == "" || chatID == 0 {
		return nil, errors.New("telegram: token and chat_id are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	return New(bot, chatID, log), nil
}

func New(bot sender, chatID int64, log logger.Logger) *Channel {
	if log == nil {
		log = logger.Nop()
	}
	return &Channel{bot: bot, chatID: chatID, log: log.With(map[string]any{"channel": "telegram"})}
}

func (c *Channel) Name() string { return "telegram" }

func (c *Channel) Send(ctx context.Context, msg notify.Message) bool {
	if ctx.Err() != nil {
		return false
	}
	text := strings.TrimSpace(msg.TextBody)
	if text == "" {
		text = strings.TrimSpace(msg.Subject)
	}
	if text == "" {
		return false
	}

	m := tgbotapi.NewMessage(c.chatID, text)
	m.DisableWebPagePreview = true
	if _, err := c.bot.Send(m); err != nil {
		c.log.Error("telegram send failed", map[string]any{"chat_id": c.chatID, "error": err})
		return false
	}
	return true
}
