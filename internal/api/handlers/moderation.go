package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/auth"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/lifecycle"
	"github.com/ntumia/mediahub/internal/moderation"
)

type ModerationHandler struct {
	moderationService *moderation.Service
	authService       *auth.Service
}

func NewModerationHandler(moderationService *moderation.Service, authService *auth.Service) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, authService: authService}
}

// Pending returns the review queue: pending organizations plus draft and
// flagged content, oldest first.
func (h *ModerationHandler) Pending(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.moderationService.ListPending(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Review queue unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type decideOp func(ctx context.Context, actor *models.User, entityType moderation.EntityType, id uuid.UUID) error

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.moderationService.Approve)
}

func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.moderationService.Reject)
}

func (h *ModerationHandler) decide(w http.ResponseWriter, r *http.Request, op decideOp) {
	entityType := moderation.EntityType(chi.URLParam(r, "type"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid entity id"})
		return
	}

	actor, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unknown user"})
		return
	}

	err = op(r.Context(), actor, entityType, id)
	if errors.Is(err, moderation.ErrTransient) {
		// One retry on contention; the service re-reads current state.
		err = op(r.Context(), actor, entityType, id)
	}

	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrPermissionDenied):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Permission denied"})
		case errors.Is(err, moderation.ErrNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Entity not found"})
		case errors.Is(err, moderation.ErrUnknownEntityType):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unknown entity type"})
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Invalid status transition"})
		case errors.Is(err, moderation.ErrTransient):
			writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Temporary failure, retry later"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Moderation decision failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Decision applied"})
}
