package notify

import (
	"context"
	"strings"
)

// Message es una notificación lista para enviar.
// HTMLBody va por email; TextBody por canales de chat.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Dispatcher entrega un mensaje y reporta éxito.
// Nunca devuelve error al llamador: los fallos de transporte se loguean adentro.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) bool
}

// Channel es un Dispatcher con nombre (email, webhook, telegram...).
type Channel interface {
	Dispatcher
	Name() string
}

// Fanout envía a todos los canales; éxito si al menos uno entregó.
type Fanout struct {
	channels []Channel
}

func NewFanout(channels ...Channel) *Fanout {
	out := make([]Channel, 0, len(channels))
	for _, c := range channels {
		if c != nil {
			out = append(out, c)
		}
	}
	return &Fanout{channels: out}
}

func (f *Fanout) Send(ctx context.Context, msg Message) bool {
	if f == nil || len(f.channels) == 0 {
		return false
	}
	delivered := false
	for _, c := range f.channels {
		if c.Send(ctx, msg) {
			delivered = true
		}
	}
	return delivered
}

func (f *Fanout) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.channels))
	for _, c := range f.channels {
		out = append(out, c.Name())
	}
	return out
}

// Valid: los tres campos del contrato son obligatorios.
func (m Message) Valid() bool {
	return strings.TrimSpace(m.To) != "" && strings.TrimSpace(m.Subject) != "" && strings.TrimSpace(m.HTMLBody) != ""
}
