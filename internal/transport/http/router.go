// Package httptransport is the thin HTTP layer over the access gateway. It
// decodes requests, hands them to Gateway.Perform, and translates coded
// errors to JSON envelopes; no authorization or lifecycle logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grantgate/internal/gateway"
	"grantgate/internal/platform/middleware"
)

// Handler holds the HTTP dependencies.
type Handler struct {
	logger    *slog.Logger
	gateway   *gateway.Gateway
	validator middleware.TokenValidator
}

func NewHandler(gw *gateway.Gateway, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		gateway:   gw,
		validator: validator,
	}
}

// NewRouter wires all endpoints. Everything under the API subtree requires a
// valid bearer token; health and metrics stay open.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Post("/users", h.handleCreateUser)
		r.Get("/users/{userID}", h.handleReadUser)
		r.Patch("/users/{userID}", h.handleUpdateUser)

		r.Post("/applications", h.handleCreateApplication)
		r.Get("/applications/{applicationID}", h.handleReadApplication)
		r.Patch("/applications/{applicationID}", h.handleUpdateApplication)
		r.Delete("/applications/{applicationID}", h.handleDeleteApplication)
		r.Post("/applications/{applicationID}/submit", h.handleSubmitApplication)
		r.Post("/applications/{applicationID}/start-review", h.handleStartReview)
		r.Post("/applications/{applicationID}/decide", h.handleDecide)
		r.Post("/applications/{applicationID}/override-status", h.handleOverrideStatus)

		r.Put("/applications/{applicationID}/score", h.handleUpsertScore)
		r.Delete("/applications/{applicationID}/score", h.handleDeleteScore)
		r.Get("/applications/{applicationID}/scores/{scorerID}", h.handleReadScore)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
