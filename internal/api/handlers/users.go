package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/lifecycle"
	"github.com/ntumia/mediahub/internal/policy"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	params := paginationFrom(r)

	query := h.db.WithContext(r.Context()).Model(&models.User{})
	if role := r.URL.Query().Get("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list users"})
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Limit(params.PerPage).Offset(params.Offset()).Find(&users).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list users"})
		return
	}

	writeJSON(w, http.StatusOK, paginated(users, total, params))
}

// ChangeRole reassigns a user's role. Unknown roles are rejected so nobody
// ends up with an empty permission set by accident.
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user id"})
		return
	}

	var req dto.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}
	if !policy.Known(policy.Role(req.Role)) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unknown role"})
		return
	}

	res := h.db.WithContext(r.Context()).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", req.Role)
	if res.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update role"})
		return
	}
	if res.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Role updated"})
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionActivate)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionDeactivate)
}

func (h *UserHandler) transition(w http.ResponseWriter, r *http.Request, action lifecycle.Action) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user id"})
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load user"})
		return
	}

	nextStatus, changed, err := lifecycle.UserNext(user.Status, action)
	if err != nil {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Invalid status transition"})
		return
	}
	if changed {
		if err := h.db.WithContext(r.Context()).Model(&user).Update("status", nextStatus).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update user"})
			return
		}
		user.Status = nextStatus
	}

	writeJSON(w, http.StatusOK, user)
}
