// Package webhook publica cada notificación como JSON en una URL.
package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pet-reminders/internal/platform/httpclient"
	"pet-reminders/internal/platform/logger"
	"pet-reminders/internal/ports/notify"
)

type Config struct {
	URL     string
	Token   string // opcional, va como Bearer
	Timeout time.Duration
	Retries int
}

type Channel struct {
	url    string
	token  string
	client *httpclient.Client
	log    logger.Logger
}

var _ notify.Channel = (*Channel)(nil)

type payload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Text     string `json:"text,omitempty"`
	SentAt   string `json:"sent_at"`
	Provider string `json:"provider"`
}

func New(cfg Config, log logger.Logger) (*Channel, error) {
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.URL)); err != nil {
		return nil, errors.New("webhook: valid url required")
	}
	if log == nil {
		log = logger.Nop()
	}
	c := httpclient.New(cfg.Timeout)
	c.Retries = cfg.Retries
	return &Channel{
		url:    strings.TrimSpace(cfg.URL),
		token:  strings.TrimSpace(cfg.Token),
		client: c,
		log:    log.With(map[string]any{"channel": "webhook"}),
	}, nil
}

func (c *Channel) Name() string { return "webhook" }

func (c *Channel) Send(ctx context.Context, msg notify.Message) bool {
	if !msg.Valid() {
		return false
	}
	headers := map[string]string{}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}
	err := c.client.DoJSON(ctx, http.MethodPost, c.url, headers, payload{
		To:       msg.To,
		Subject:  msg.Subject,
		HTML:     msg.HTMLBody,
		Text:     msg.TextBody,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
		Provider: "petcare",
	}, nil)
	if err != nil {
		c.log.Error("webhook delivery failed", map[string]any{"to": msg.To, "error": err})
		return false
	}
	return true
}
