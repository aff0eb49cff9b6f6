package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/notify"
)

type NotificationHandler struct {
	notifyService *notify.Service
}

func NewNotificationHandler(notifyService *notify.Service) *NotificationHandler {
	return &NotificationHandler{notifyService: notifyService}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notifyService.List(r.Context(), userID, unreadOnly)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list notifications"})
		return
	}

	unread, err := h.notifyService.UnreadCount(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count notifications"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread":        unread,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid notification id"})
		return
	}

	err = h.notifyService.MarkRead(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Notification not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to mark notification"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Marked read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifyService.MarkAllRead(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to mark notifications"})
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "All marked read"})
}
