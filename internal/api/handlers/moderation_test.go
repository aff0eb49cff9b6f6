package handlers_test

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntumia/mediahub/internal/api/handlers"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/moderation"
	"github.com/ntumia/mediahub/internal/policy"
	"github.com/ntumia/mediahub/internal/testutil"
)

func setupModerationRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	moderationService := moderation.NewService(tc.DB, moderation.NopNotifier{}, logger)
	handler := handlers.NewModerationHandler(moderationService, newAuthService(t, tc))

	r := chi.NewRouter()
	r.Route("/api/v1/moderation", func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Use(middleware.RequirePermission(func(p policy.Permissions) bool { return p.CanModerate }))
		r.Get("/pending", handler.Pending)
		r.Post("/{type}/{id}/approve", handler.Approve)
		r.Post("/{type}/{id}/reject", handler.Reject)
	})

	return r, tc
}

func TestModerationHandler_Pending(t *testing.T) {
	router, tc := setupModerationRouter(t)
	defer tc.Cleanup()

	pendingOrg := testutil.CreateTestOrg(t, tc.DB, models.OrgStatusPending)
	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusDraft)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/moderation/pending", nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var snapshot moderation.PendingSnapshot
	testutil.ParseJSONResponse(t, rr, &snapshot)
	require.Len(t, snapshot.Organizations, 1)
	assert.Equal(t, pendingOrg.ID, snapshot.Organizations[0].ID)
	assert.Len(t, snapshot.Content, 1)
}

func TestModerationHandler_ApproveOrganization(t *testing.T) {
	router, tc := setupModerationRouter(t)
	defer tc.Cleanup()

	pendingOrg := testutil.CreateTestOrg(t, tc.DB, models.OrgStatusPending)

	path := fmt.Sprintf("/api/v1/moderation/organization/%s/approve", pendingOrg.ID)
	req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var updated models.MediaOrganization
	require.NoError(t, tc.DB.First(&updated, "id = ?", pendingOrg.ID).Error)
	assert.Equal(t, models.OrgStatusActive, updated.Status)
}

func TestModerationHandler_RejectContent(t *testing.T) {
	router, tc := setupModerationRouter(t)
	defer tc.Cleanup()

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	draft := testutil.CreateTestContent(t, tc.DB, tc.Org, editor, models.ContentStatusDraft)

	path := fmt.Sprintf("/api/v1/moderation/content/%s/reject", draft.ID)
	req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var updated models.Content
	require.NoError(t, tc.DB.First(&updated, "id = ?", draft.ID).Error)
	assert.Equal(t, models.ContentStatusArchived, updated.Status)
}

func TestModerationHandler_ViewerForbidden(t *testing.T) {
	router, tc := setupModerationRouter(t)
	defer tc.Cleanup()

	viewer := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleViewer)
	viewerToken := testutil.GenerateTestToken(t, tc.JWTService, viewer)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/moderation/pending", nil, viewerToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestModerationHandler_UnknownEntityType(t *testing.T) {
	router, tc := setupModerationRouter(t)
	defer tc.Cleanup()

	pendingOrg := testutil.CreateTestOrg(t, tc.DB, models.OrgStatusPending)

	path := fmt.Sprintf("/api/v1/moderation/article/%s/approve", pendingOrg.ID)
	req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestModerationHandler_NotFound(t *testing.T) {
	router, tc := setupModerationRouter(t)
	defer tc.Cleanup()

	path := "/api/v1/moderation/organization/00000000-0000-0000-0000-000000000001/approve"
	req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestModerationHandler_RepeatDecisionIsIdempotent(t *testing.T) {
	router, tc := setupModerationRouter(t)
	defer tc.Cleanup()

	pendingOrg := testutil.CreateTestOrg(t, tc.DB, models.OrgStatusPending)

	path := fmt.Sprintf("/api/v1/moderation/organization/%s/approve", pendingOrg.ID)
	for i := 0; i < 2; i++ {
		req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	var updated models.MediaOrganization
	require.NoError(t, tc.DB.First(&updated, "id = ?", pendingOrg.ID).Error)
	assert.Equal(t, models.OrgStatusActive, updated.Status)
	assert.Equal(t, int64(2), updated.Version)
}
