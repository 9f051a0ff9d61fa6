package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grantgate/internal/gateway"
	"grantgate/internal/platform/middleware"
	"grantgate/pkg/domain"
	dErrors "grantgate/pkg/domain-errors"
	"grantgate/pkg/platform/httputil"
)

// perform runs one gateway operation for the authenticated actor and writes
// the outcome. All handlers funnel through here so error translation and
// logging stay uniform.
func (h *Handler) perform(w http.ResponseWriter, r *http.Request, op domain.Operation, ref gateway.ResourceRef, payload any, successStatus int) {
	ctx := r.Context()
	actorID := middleware.GetActorID(ctx)
	if actorID.IsNil() {
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	result, err := h.gateway.Perform(ctx, actorID, op, ref, payload)
	if err != nil {
		if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
			h.logger.ErrorContext(ctx, "operation failed",
				"operation", op,
				"resource", ref.Kind,
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	body := resultBody(result)
	if body == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, successStatus, body)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

func applicationRef(r *http.Request) gateway.ResourceRef {
	return gateway.ApplicationRef(domain.ApplicationID(chi.URLParam(r, "applicationID")))
}

// --- applications ---

func (h *Handler) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if !decode(w, r, &req) {
		return
	}
	h.perform(w, r, domain.OpCreate, gateway.ResourceRef{Kind: domain.ResourceApplication}, req.toDraft(), http.StatusCreated)
}

func (h *Handler) handleReadApplication(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, domain.OpRead, applicationRef(r), nil, http.StatusOK)
}

func (h *Handler) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	var req updateApplicationRequest
	if !decode(w, r, &req) {
		return
	}
	h.perform(w, r, domain.OpUpdate, applicationRef(r), req.toPatch(), http.StatusOK)
}

func (h *Handler) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, domain.OpDelete, applicationRef(r), nil, http.StatusNoContent)
}

func (h *Handler) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if !decode(w, r, &req) {
		return
	}
	h.perform(w, r, domain.OpSubmit, applicationRef(r), &gateway.SubmissionChecklist{FieldsComplete: req.FieldsComplete}, http.StatusOK)
}

func (h *Handler) handleStartReview(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, domain.OpStartReview, applicationRef(r), nil, http.StatusOK)
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, domain.OpDecide, applicationRef(r), nil, http.StatusOK)
}

func (h *Handler) handleOverrideStatus(w http.ResponseWriter, r *http.Request) {
	var req overrideStatusRequest
	if !decode(w, r, &req) {
		return
	}
	override := &gateway.StatusOverride{To: domain.Status(req.To), Note: req.Note}
	h.perform(w, r, domain.OpOverrideStatus, applicationRef(r), override, http.StatusOK)
}

// --- scores ---

// handleUpsertScore records the authenticated scorer's own sheet; the scorer
// id comes from the token, never the path or body.
func (h *Handler) handleUpsertScore(w http.ResponseWriter, r *http.Request) {
	var req upsertScoreRequest
	if !decode(w, r, &req) {
		return
	}
	key := domain.ScoreKey{
		ApplicationID: domain.ApplicationID(chi.URLParam(r, "applicationID")),
		ScorerID:      middleware.GetActorID(r.Context()),
	}
	h.perform(w, r, domain.OpUpdate, gateway.ScoreRef(key), req.toSheet(), http.StatusOK)
}

func (h *Handler) handleDeleteScore(w http.ResponseWriter, r *http.Request) {
	key := domain.ScoreKey{
		ApplicationID: domain.ApplicationID(chi.URLParam(r, "applicationID")),
		ScorerID:      middleware.GetActorID(r.Context()),
	}
	h.perform(w, r, domain.OpDelete, gateway.ScoreRef(key), nil, http.StatusNoContent)
}

func (h *Handler) handleReadScore(w http.ResponseWriter, r *http.Request) {
	key := domain.ScoreKey{
		ApplicationID: domain.ApplicationID(chi.URLParam(r, "applicationID")),
		ScorerID:      domain.UserID(chi.URLParam(r, "scorerID")),
	}
	h.perform(w, r, domain.OpRead, gateway.ScoreRef(key), nil, http.StatusOK)
}

// --- users ---

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	h.perform(w, r, domain.OpCreate, gateway.ResourceRef{Kind: domain.ResourceUser}, req.toUser(), http.StatusCreated)
}

func (h *Handler) handleReadUser(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, domain.OpRead, gateway.UserRef(domain.UserID(chi.URLParam(r, "userID"))), nil, http.StatusOK)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decode(w, r, &req) {
		return
	}
	h.perform(w, r, domain.OpUpdate, gateway.UserRef(domain.UserID(chi.URLParam(r, "userID"))), req.toPatch(), http.StatusOK)
}
