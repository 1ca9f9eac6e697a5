package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"coursegate/internal/token"
)

// TokenValidator defines the interface for validating session tokens. The
// token service owns the Identity type; this middleware only consumes it.
type TokenValidator interface {
	Validate(tokenString string) (*token.Identity, error)
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for tests that build contexts directly.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated identity from the context, if any.
func GetIdentity(ctx context.Context) (token.Identity, bool) {
	claims, ok := ctx.Value(ContextKeyIdentity).(token.Identity)
	return claims, ok
}

// WithIdentity injects an identity into the context. Primarily for tests.
func WithIdentity(ctx context.Context, claims token.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, claims)
}

// Authenticate decodes a bearer token when one is present. Decoding is
// best-effort: a missing or invalid token leaves the request anonymous and
// the request continues. Enforcement happens separately in RequirePolicy.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed, continuing anonymous",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), *claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
