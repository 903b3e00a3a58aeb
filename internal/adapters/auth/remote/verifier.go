// Package remote verifica bearer tokens contra el servicio de identidad
// de la aplicación principal.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-reminders/internal/platform/httpclient"
	"pet-reminders/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("token verifier not configured")
	ErrUnauthorized  = errors.New("token rejected")
	ErrUpstream      = errors.New("token verifier upstream error")
)

const defaultAPIKeyHeader = "X-Api-Key"

type Config struct {
	VerifyURL string
	APIKey    string
	Timeout   time.Duration
}

// Verifier implementa auth.AuthVerifier con un POST {"token": ...}.
type Verifier struct {
	http   *httpclient.Client
	url    string
	apiKey string
}

func New(cfg Config) (*Verifier, error) {
	u := strings.TrimSpace(cfg.VerifyURL)
	if u == "" {
		return nil, ErrNotConfigured
	}
	c, err := httpclient.NewWithBaseURL(u, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Verifier{http: c, url: c.BaseURL, apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	TenantID string `json:"tenant_id"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.http == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	headers := map[string]string{"Authorization": "Bearer " + token}
	if v.apiKey != "" {
		headers[defaultAPIKeyHeader] = v.apiKey
	}

	var out verifyResponse
	err := v.http.DoJSON(ctx, http.MethodPost, v.url, headers, verifyRequest{Token: token}, &out)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && (he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	uid := strings.TrimSpace(out.UserID)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}
	return auth.Claims{
		UserID:   uid,
		Email:    strings.TrimSpace(out.Email),
		TenantID: strings.TrimSpace(out.TenantID),
	}, nil
}
