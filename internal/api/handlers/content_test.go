package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/api/handlers"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/policy"
	"github.com/ntumia/mediahub/internal/testutil"
)

// stubSigner returns a canned URL instead of talking to object storage.
type stubSigner struct {
	lastKey string
}

func (s *stubSigner) SignDownload(_ context.Context, key string) (string, error) {
	s.lastKey = key
	return "https://cdn.example/" + key + "?sig=stub", nil
}

func setupContentRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup, *stubSigner) {
	tc := testutil.NewTestContext(t)

	signer := &stubSigner{}
	handler := handlers.NewContentHandler(tc.DB, signer, 900)

	r := chi.NewRouter()
	r.Route("/api/v1/content", func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Get("/", handler.List)
		r.Get("/mine", handler.Mine)
		r.With(middleware.RequirePermission(func(p policy.Permissions) bool { return p.CanUpload })).
			Post("/", handler.Create)
		r.Get("/{id}", handler.Get)
		r.With(middleware.RequirePermission(func(p policy.Permissions) bool { return p.CanModerate })).
			Post("/{id}/flag", handler.Flag)
		r.Post("/{id}/archive", handler.Archive)
		r.Post("/{id}/download", handler.Download)
	})

	return r, tc, signer
}

func TestContentHandler_ListOnlyPublished(t *testing.T) {
	router, tc, _ := setupContentRouter(t)
	defer tc.Cleanup()

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	published := testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusPublished)
	testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusDraft)
	testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusFlagged)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/content/", nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data  []models.Content `json:"data"`
		Total int64            `json:"total"`
	}
	testutil.ParseJSONResponse(t, rr, &resp)
	require.Equal(t, int64(1), resp.Total)
	assert.Equal(t, published.ID, resp.Data[0].ID)
}

func TestContentHandler_CreateDraft(t *testing.T) {
	router, tc, _ := setupContentRouter(t)
	defer tc.Cleanup()

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	token := testutil.GenerateTestToken(t, tc.JWTService, editor)

	body := map[string]interface{}{
		"title":      "Evening Bulletin",
		"type":       "video",
		"format":     "mp4",
		"file_size":  50 << 20,
		"object_key": "test/evening-bulletin.mp4",
	}

	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/content/", body, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var created models.Content
	testutil.ParseJSONResponse(t, rr, &created)
	assert.Equal(t, models.ContentStatusDraft, created.Status)
	assert.Equal(t, editor.ID, created.UploaderID)

	// Storage accounting moves with the upload.
	var org models.MediaOrganization
	require.NoError(t, tc.DB.First(&org, "id = ?", tc.Org.ID).Error)
	assert.Equal(t, int64(50<<20), org.StorageUsed)
	assert.Equal(t, 1, org.UploadCount)
}

func TestContentHandler_CreateViewerForbidden(t *testing.T) {
	router, tc, _ := setupContentRouter(t)
	defer tc.Cleanup()

	viewer := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleViewer)
	token := testutil.GenerateTestToken(t, tc.JWTService, viewer)

	body := map[string]interface{}{
		"title":      "Nope",
		"type":       "video",
		"file_size":  1024,
		"object_key": "test/nope.mp4",
	}

	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/content/", body, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestContentHandler_CreateStorageLimit(t *testing.T) {
	router, tc, _ := setupContentRouter(t)
	defer tc.Cleanup()

	require.NoError(t, tc.DB.Model(tc.Org).Update("storage_limit", 1024).Error)

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	token := testutil.GenerateTestToken(t, tc.JWTService, editor)

	body := map[string]interface{}{
		"title":      "Too Big",
		"type":       "video",
		"file_size":  4096,
		"object_key": "test/too-big.mp4",
	}

	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/content/", body, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestContentHandler_Download(t *testing.T) {
	router, tc, signer := setupContentRouter(t)
	defer tc.Cleanup()

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	published := testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusPublished)

	path := fmt.Sprintf("/api/v1/content/%s/download", published.ID)
	req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var grant dto.DownloadGrantResponse
	testutil.ParseJSONResponse(t, rr, &grant)
	assert.Contains(t, grant.URL, published.ObjectKey)
	assert.Equal(t, 900, grant.ExpiresIn)
	assert.Equal(t, published.ObjectKey, signer.lastKey)

	// Grant is recorded and counters move.
	var download models.Download
	require.NoError(t, tc.DB.Where("content_id = ?", published.ID).First(&download).Error)
	assert.Equal(t, tc.Admin.ID, download.UserID)

	var updated models.Content
	require.NoError(t, tc.DB.First(&updated, "id = ?", published.ID).Error)
	assert.Equal(t, 1, updated.Downloads)
}

func TestContentHandler_DownloadDraftForbidden(t *testing.T) {
	router, tc, _ := setupContentRouter(t)
	defer tc.Cleanup()

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	draft := testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusDraft)

	path := fmt.Sprintf("/api/v1/content/%s/download", draft.ID)
	req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestContentHandler_FlagAndArchive(t *testing.T) {
	router, tc, _ := setupContentRouter(t)
	defer tc.Cleanup()

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	editorToken := testutil.GenerateTestToken(t, tc.JWTService, editor)
	published := testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusPublished)

	t.Run("moderator flags published content", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/content/%s/flag", published.ID)
		req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var updated models.Content
		require.NoError(t, tc.DB.First(&updated, "id = ?", published.ID).Error)
		assert.Equal(t, models.ContentStatusFlagged, updated.Status)
	})

	t.Run("editor cannot flag", func(t *testing.T) {
		other := testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusPublished)
		path := fmt.Sprintf("/api/v1/content/%s/flag", other.ID)
		req := testutil.AuthenticatedRequest(t, "POST", path, nil, editorToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("editor archives own published content", func(t *testing.T) {
		own := testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusPublished)
		path := fmt.Sprintf("/api/v1/content/%s/archive", own.ID)
		req := testutil.AuthenticatedRequest(t, "POST", path, nil, editorToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var updated models.Content
		require.NoError(t, tc.DB.First(&updated, "id = ?", own.ID).Error)
		assert.Equal(t, models.ContentStatusArchived, updated.Status)
	})

	t.Run("flagged content cannot be archived by owner", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/content/%s/archive", published.ID)
		req := testutil.AuthenticatedRequest(t, "POST", path, nil, editorToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestContentHandler_GetHidesUnpublishedFromOutsiders(t *testing.T) {
	router, tc, _ := setupContentRouter(t)
	defer tc.Cleanup()

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	draft := testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusDraft)

	otherOrg := testutil.CreateTestOrg(t, tc.DB, models.OrgStatusActive)
	outsider := testutil.CreateTestUser(t, tc.DB, otherOrg, policy.RoleViewer)
	outsiderToken := testutil.GenerateTestToken(t, tc.JWTService, outsider)

	path := fmt.Sprintf("/api/v1/content/%s", draft.ID)

	req := testutil.AuthenticatedRequest(t, "GET", path, nil, outsiderToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// The uploader's own organization still sees it.
	editorToken := testutil.GenerateTestToken(t, tc.JWTService, editor)
	req = testutil.AuthenticatedRequest(t, "GET", path, nil, editorToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
