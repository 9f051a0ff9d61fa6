package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"grantgate/pkg/domain"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims carries the authenticated subject. Role and area are never
// taken from the token; the gateway resolves them from the user store on
// every call.
type TokenClaims struct {
	UserID domain.UserID
}

type contextKeyActorID struct{}

// ContextKeyActorID is exported for use in handlers and tests.
var ContextKeyActorID = contextKeyActorID{}

// GetActorID retrieves the authenticated actor's user id from the context.
func GetActorID(ctx context.Context) domain.UserID {
	if actorID, ok := ctx.Value(ContextKeyActorID).(domain.UserID); ok {
		return actorID
	}
	return ""
}

// WithActorID injects an actor id directly, bypassing token validation.
// For tests only.
func WithActorID(ctx context.Context, actorID domain.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actorID)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated subject on the context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyActorID, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
