package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/auth"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/lifecycle"
	"github.com/ntumia/mediahub/internal/policy"
)

type OrganizationHandler struct {
	db          *gorm.DB
	authService *auth.Service
}

func NewOrganizationHandler(db *gorm.DB, authService *auth.Service) *OrganizationHandler {
	return &OrganizationHandler{db: db, authService: authService}
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	params := paginationFrom(r)

	query := h.db.WithContext(r.Context()).Model(&models.MediaOrganization{})
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if orgType := r.URL.Query().Get("type"); orgType != "" {
		query = query.Where("type = ?", orgType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list organizations"})
		return
	}

	var orgs []models.MediaOrganization
	if err := query.Order("created_at DESC").Limit(params.PerPage).Offset(params.Offset()).Find(&orgs).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list organizations"})
		return
	}

	writeJSON(w, http.StatusOK, paginated(orgs, total, params))
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid organization id"})
		return
	}

	var org models.MediaOrganization
	if err := h.db.WithContext(r.Context()).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Organization not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load organization"})
		return
	}

	writeJSON(w, http.StatusOK, org)
}

// Members lists the organization's users. Callers see their own
// organization; admins see any.
func (h *OrganizationHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid organization id"})
		return
	}

	role := policy.Role(middleware.GetUserRole(r.Context()))
	if role != policy.RoleAdmin && middleware.GetOrganizationID(r.Context()) != id {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Permission denied"})
		return
	}

	var members []models.User
	if err := h.db.WithContext(r.Context()).
		Where("organization_id = ?", id).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list members"})
		return
	}

	writeJSON(w, http.StatusOK, members)
}

// Suspend, Reinstate and Reactivate apply admin status transitions outside
// the review queue.
func (h *OrganizationHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionSuspend)
}

func (h *OrganizationHandler) Reinstate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionReinstate)
}

func (h *OrganizationHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionReactivate)
}

func (h *OrganizationHandler) transition(w http.ResponseWriter, r *http.Request, action lifecycle.Action) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid organization id"})
		return
	}

	// Version-guarded update with one re-read on contention.
	for attempt := 0; attempt < 2; attempt++ {
		var org models.MediaOrganization
		if err := h.db.WithContext(r.Context()).First(&org, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Organization not found"})
				return
			}
			writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Failed to load organization"})
			return
		}

		nextStatus, changed, err := lifecycle.OrgNext(org.Status, action)
		if err != nil {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Invalid status transition"})
			return
		}
		if !changed {
			writeJSON(w, http.StatusOK, org)
			return
		}

		res := h.db.WithContext(r.Context()).Model(&models.MediaOrganization{}).
			Where("id = ? AND version = ?", org.ID, org.Version).
			Updates(map[string]interface{}{"status": nextStatus, "version": org.Version + 1})
		if res.Error != nil {
			writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Failed to update organization"})
			return
		}
		if res.RowsAffected > 0 {
			org.Status = nextStatus
			org.Version++
			writeJSON(w, http.StatusOK, org)
			return
		}
	}

	writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Concurrent update, retry"})
}

// Invite issues a sealed invite token for a new member.
func (h *OrganizationHandler) Invite(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid organization id"})
		return
	}

	var req dto.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	actor, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unknown user"})
		return
	}

	token, err := h.authService.CreateInvite(r.Context(), actor, id, req.Email, policy.Role(req.Role))
	if err != nil {
		switch err {
		case auth.ErrOrgNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Organization not found"})
		case auth.ErrInvalidInvite:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid invite role"})
		default:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Permission denied"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func paginationFrom(r *http.Request) dto.PaginationParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	params := dto.PaginationParams{Page: page, PerPage: perPage}
	params.Normalize()
	return params
}

func paginated(data interface{}, total int64, params dto.PaginationParams) dto.PaginatedResponse {
	totalPages := int(total) / params.PerPage
	if int(total)%params.PerPage > 0 {
		totalPages++
	}
	return dto.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
	}
}
