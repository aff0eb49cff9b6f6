package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/lifecycle"
	"github.com/ntumia/mediahub/internal/policy"
	"github.com/ntumia/mediahub/internal/storage"
)

type ContentHandler struct {
	db           *gorm.DB
	signer       storage.ObjectSigner
	urlExpirySec int
}

func NewContentHandler(db *gorm.DB, signer storage.ObjectSigner, urlExpirySec int) *ContentHandler {
	return &ContentHandler{db: db, signer: signer, urlExpirySec: urlExpirySec}
}

// List returns published content for the exchange catalog. Filters are
// additive; absent filters match everything.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	params := paginationFrom(r)
	q := r.URL.Query()

	query := h.db.WithContext(r.Context()).Model(&models.Content{}).
		Where("status = ?", models.ContentStatusPublished)

	if contentType := q.Get("type"); contentType != "" {
		query = query.Where("type = ?", contentType)
	}
	if license := q.Get("license"); license != "" {
		query = query.Where("license = ?", license)
	}
	if language := q.Get("language"); language != "" {
		query = query.Where("language = ?", language)
	}
	if orgID := q.Get("organization_id"); orgID != "" {
		query = query.Where("organization_id = ?", orgID)
	}
	if search := q.Get("search"); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list content"})
		return
	}

	var items []models.Content
	if err := query.Order("created_at DESC").Limit(params.PerPage).Offset(params.Offset()).Find(&items).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list content"})
		return
	}

	writeJSON(w, http.StatusOK, paginated(items, total, params))
}

// Mine lists the caller organization's own content in every status.
func (h *ContentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	params := paginationFrom(r)
	orgID := middleware.GetOrganizationID(r.Context())

	query := h.db.WithContext(r.Context()).Model(&models.Content{}).
		Where("organization_id = ?", orgID)
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list content"})
		return
	}

	var items []models.Content
	if err := query.Order("created_at DESC").Limit(params.PerPage).Offset(params.Offset()).Find(&items).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list content"})
		return
	}

	writeJSON(w, http.StatusOK, paginated(items, total, params))
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	content, ok := h.load(w, r)
	if !ok {
		return
	}

	// Unpublished items are visible to their own organization and platform staff.
	if content.Status != models.ContentStatusPublished {
		role := policy.Role(middleware.GetUserRole(r.Context()))
		if !policy.For(role).CanModerate && middleware.GetOrganizationID(r.Context()) != content.OrganizationID {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Content not found"})
			return
		}
	}

	h.db.WithContext(r.Context()).Model(content).UpdateColumn("views", gorm.Expr("views + 1"))
	writeJSON(w, http.StatusOK, content)
}

// Create registers a draft. The file itself goes straight to object
// storage; only metadata and the object key land here.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	orgID := middleware.GetOrganizationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	license := models.License(req.License)
	if license == "" {
		license = models.LicensePrivate
	}

	content := models.Content{
		OrganizationID: orgID,
		UploaderID:     userID,
		Title:          req.Title,
		Description:    req.Description,
		Type:           models.ContentType(req.Type),
		Format:         req.Format,
		FileSize:       req.FileSize,
		Duration:       req.Duration,
		Language:       req.Language,
		License:        license,
		Status:         models.ContentStatusDraft,
		Tags:           req.Tags,
		Categories:     req.Categories,
		ObjectKey:      req.ObjectKey,
		Version:        1,
	}

	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var org models.MediaOrganization
		if err := tx.First(&org, "id = ?", orgID).Error; err != nil {
			return err
		}
		if org.Status != models.OrgStatusActive {
			return errInactiveOrg
		}
		if org.StorageUsed+req.FileSize > org.StorageLimit {
			return errStorageExceeded
		}

		if err := tx.Create(&content).Error; err != nil {
			return err
		}

		return tx.Model(&org).Updates(map[string]interface{}{
			"storage_used": gorm.Expr("storage_used + ?", req.FileSize),
			"upload_count": gorm.Expr("upload_count + 1"),
		}).Error
	})

	if err != nil {
		switch {
		case errors.Is(err, errInactiveOrg):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Organization is not active"})
		case errors.Is(err, errStorageExceeded):
			writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "Storage limit exceeded"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create content"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, content)
}

// Flag sends published content back to the review queue.
func (h *ContentHandler) Flag(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionFlag, nil)
}

// Archive retires content permanently. Restricted to the owning
// organization's content managers and platform staff.
func (h *ContentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionArchive, func(content *models.Content, r *http.Request) bool {
		role := policy.Role(middleware.GetUserRole(r.Context()))
		if policy.For(role).CanModerate {
			return true
		}
		return policy.For(role).CanManageContent && middleware.GetOrganizationID(r.Context()) == content.OrganizationID
	})
}

func (h *ContentHandler) transition(w http.ResponseWriter, r *http.Request, action lifecycle.Action, allowed func(*models.Content, *http.Request) bool) {
	for attempt := 0; attempt < 2; attempt++ {
		content, ok := h.load(w, r)
		if !ok {
			return
		}

		if allowed != nil && !allowed(content, r) {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Permission denied"})
			return
		}

		nextStatus, changed, err := lifecycle.ContentNext(content.Status, action)
		if err != nil {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Invalid status transition"})
			return
		}
		if !changed {
			writeJSON(w, http.StatusOK, content)
			return
		}

		res := h.db.WithContext(r.Context()).Model(&models.Content{}).
			Where("id = ? AND version = ?", content.ID, content.Version).
			Updates(map[string]interface{}{"status": nextStatus, "version": content.Version + 1})
		if res.Error != nil {
			writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Failed to update content"})
			return
		}
		if res.RowsAffected > 0 {
			content.Status = nextStatus
			content.Version++
			writeJSON(w, http.StatusOK, content)
			return
		}
	}

	writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Concurrent update, retry"})
}

// Download issues a short-lived signed URL and records the grant. Bytes
// never pass through the platform.
func (h *ContentHandler) Download(w http.ResponseWriter, r *http.Request) {
	content, ok := h.load(w, r)
	if !ok {
		return
	}

	if content.Status != models.ContentStatusPublished {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Content is not published"})
		return
	}
	if content.License == models.LicensePrivate && middleware.GetOrganizationID(r.Context()) != content.OrganizationID {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Content license does not allow download"})
		return
	}

	var req dto.DownloadRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // optional body

	url, err := h.signer.SignDownload(r.Context(), content.ObjectKey)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Could not sign download"})
		return
	}

	download := models.Download{
		ContentID:      content.ID,
		OrganizationID: middleware.GetOrganizationID(r.Context()),
		UserID:         middleware.GetUserID(r.Context()),
		Format:         req.Format,
		Purpose:        req.Purpose,
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&download).Error; err != nil {
			return err
		}
		if err := tx.Model(content).UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.MediaOrganization{}).
			Where("id = ?", content.OrganizationID).
			UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to record download"})
		return
	}

	writeJSON(w, http.StatusOK, dto.DownloadGrantResponse{URL: url, ExpiresIn: h.urlExpirySec})
}

func (h *ContentHandler) load(w http.ResponseWriter, r *http.Request) (*models.Content, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid content id"})
		return nil, false
	}

	var content models.Content
	if err := h.db.WithContext(r.Context()).First(&content, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Content not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load content"})
		return nil, false
	}

	return &content, true
}

var (
	errInactiveOrg     = errors.New("organization not active")
	errStorageExceeded = errors.New("storage limit exceeded")
)
