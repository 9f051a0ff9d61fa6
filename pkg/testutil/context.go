package testutil

import (
	"context"
	"net/http"

	"grantgate/internal/platform/middleware"
	"grantgate/pkg/domain"
)

// WithActor stamps an authenticated actor onto the request context,
// simulating what RequireAuth does after token validation.
func WithActor(req *http.Request, actorID domain.UserID) *http.Request {
	return req.WithContext(middleware.WithActorID(req.Context(), actorID))
}

// WithRequestID stamps a request id onto the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(middleware.WithRequestID(req.Context(), requestID))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), key, value))
}
