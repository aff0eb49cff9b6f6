package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntumia/mediahub/internal/api/handlers"
	"github.com/ntumia/mediahub/internal/api/middleware"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/policy"
	"github.com/ntumia/mediahub/internal/testutil"
)

func setupOrgRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	handler := handlers.NewOrganizationHandler(tc.DB, newAuthService(t, tc))

	r := chi.NewRouter()
	r.Route("/api/v1/organizations", func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.With(middleware.RequireRole(policy.RoleAdmin, policy.RoleModerator)).
			Get("/", handler.List)
		r.Get("/{id}", handler.Get)
		r.Get("/{id}/members", handler.Members)
		r.Post("/{id}/invites", handler.Invite)
		r.With(middleware.RequireRole(policy.RoleAdmin)).Group(func(r chi.Router) {
			r.Post("/{id}/suspend", handler.Suspend)
			r.Post("/{id}/reinstate", handler.Reinstate)
			r.Post("/{id}/reactivate", handler.Reactivate)
		})
	})

	return r, tc
}

func TestOrganizationHandler_ListFilters(t *testing.T) {
	router, tc := setupOrgRouter(t)
	defer tc.Cleanup()

	testutil.CreateTestOrg(t, tc.DB, models.OrgStatusPending)
	testutil.CreateTestOrg(t, tc.DB, models.OrgStatusActive)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/organizations/?status=pending", nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data  []models.MediaOrganization `json:"data"`
		Total int64                      `json:"total"`
	}
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, models.OrgStatusPending, resp.Data[0].Status)
}

func TestOrganizationHandler_ListForbiddenForEditor(t *testing.T) {
	router, tc := setupOrgRouter(t)
	defer tc.Cleanup()

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	token := testutil.GenerateTestToken(t, tc.JWTService, editor)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/organizations/", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestOrganizationHandler_SuspendReinstate(t *testing.T) {
	router, tc := setupOrgRouter(t)
	defer tc.Cleanup()

	org := testutil.CreateTestOrg(t, tc.DB, models.OrgStatusActive)

	suspend := fmt.Sprintf("/api/v1/organizations/%s/suspend", org.ID)
	req := testutil.AuthenticatedRequest(t, "POST", suspend, nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var updated models.MediaOrganization
	require.NoError(t, tc.DB.First(&updated, "id = ?", org.ID).Error)
	assert.Equal(t, models.OrgStatusSuspended, updated.Status)
	assert.Equal(t, int64(2), updated.Version)

	// Suspending again is a no-op, not an error.
	req = testutil.AuthenticatedRequest(t, "POST", suspend, nil, tc.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, tc.DB.First(&updated, "id = ?", org.ID).Error)
	assert.Equal(t, int64(2), updated.Version)

	reinstate := fmt.Sprintf("/api/v1/organizations/%s/reinstate", org.ID)
	req = testutil.AuthenticatedRequest(t, "POST", reinstate, nil, tc.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, tc.DB.First(&updated, "id = ?", org.ID).Error)
	assert.Equal(t, models.OrgStatusActive, updated.Status)
}

func TestOrganizationHandler_ReactivateRequiresInactive(t *testing.T) {
	router, tc := setupOrgRouter(t)
	defer tc.Cleanup()

	org := testutil.CreateTestOrg(t, tc.DB, models.OrgStatusSuspended)

	path := fmt.Sprintf("/api/v1/organizations/%s/reactivate", org.ID)
	req := testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestOrganizationHandler_MembersScoped(t *testing.T) {
	router, tc := setupOrgRouter(t)
	defer tc.Cleanup()

	otherOrg := testutil.CreateTestOrg(t, tc.DB, models.OrgStatusActive)
	testutil.CreateTestUser(t, tc.DB, otherOrg, policy.RoleEditor)

	editor := testutil.CreateTestUser(t, tc.DB, tc.Org, policy.RoleEditor)
	editorToken := testutil.GenerateTestToken(t, tc.JWTService, editor)

	t.Run("own organization", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/organizations/%s/members", tc.Org.ID)
		req := testutil.AuthenticatedRequest(t, "GET", path, nil, editorToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var members []models.User
		testutil.ParseJSONResponse(t, rr, &members)
		assert.Len(t, members, 2)
	})

	t.Run("foreign organization forbidden", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/organizations/%s/members", otherOrg.ID)
		req := testutil.AuthenticatedRequest(t, "GET", path, nil, editorToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin sees any organization", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/organizations/%s/members", otherOrg.ID)
		req := testutil.AuthenticatedRequest(t, "GET", path, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestOrganizationHandler_Invite(t *testing.T) {
	router, tc := setupOrgRouter(t)
	defer tc.Cleanup()

	path := fmt.Sprintf("/api/v1/organizations/%s/invites", tc.Org.ID)
	body := map[string]string{"email": "new@member.example", "role": "viewer"}

	req := testutil.AuthenticatedRequest(t, "POST", path, body, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]string
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.NotEmpty(t, resp["token"])
}
