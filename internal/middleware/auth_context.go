package middleware

import (
	"context"
	"net/http"
	"strings"

	"pet-reminders/internal/platform/logger"
	"pet-reminders/internal/ports/auth"
)

// DebugUserHeader identifica al usuario en modo dev (sin verifier).
const DebugUserHeader = "X-Debug-User-ID"

type ctxKey struct{}

// AuthContext deja auth.Claims en el contexto si el request trae identidad.
// No corta nunca: el feed y los listados deciden 401/403 por su cuenta.
func AuthContext(verifier auth.AuthVerifier, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get(DebugUserHeader)); uid != "" {
					r = r.WithContext(WithClaims(r.Context(), auth.Claims{UserID: uid}))
				}
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debug("bearer token not accepted", map[string]any{"error": err, "path": r.URL.Path})
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(auth.Claims)
	return c, ok
}

func bearerToken(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
