package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/api/handlers"
	"github.com/ntumia/mediahub/internal/auth"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/testutil"
	"github.com/ntumia/mediahub/pkg/crypto"
)

func newAuthService(t *testing.T, tc *testutil.TestSetup) *auth.Service {
	t.Helper()
	sealer, err := crypto.NewSealer("")
	require.NoError(t, err)
	return auth.NewService(tc.DB, tc.JWTService, sealer, 7*24*time.Hour)
}

func setupAuthTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	handler := handlers.NewAuthHandler(newAuthService(t, tc))

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", handler.Register)
	r.Post("/api/v1/auth/login", handler.Login)
	r.Post("/api/v1/auth/logout", handler.Logout)
	r.Post("/api/v1/auth/accept-invite", handler.AcceptInvite)

	return r, tc
}

func registerBody() map[string]interface{} {
	return map[string]interface{}{
		"org_name":      "Canal Nord",
		"org_type":      "tv",
		"contact_name":  "Awa Diop",
		"contact_email": "awa@canalnord.example",
		"email":         "owner@canalnord.example",
		"password":      "securepassword123",
		"name":          "Owner",
		"accept_terms":  true,
	}
}

func TestAuthHandler_Register(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("successful registration", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", registerBody())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "owner@canalnord.example", resp.User.Email)
		assert.Equal(t, "editor", resp.User.Role)

		// The new organization must await review.
		var org models.MediaOrganization
		require.NoError(t, tc.DB.Where("name = ?", "Canal Nord").First(&org).Error)
		assert.Equal(t, models.OrgStatusPending, org.Status)
	})

	t.Run("duplicate email", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", registerBody())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("terms not accepted", func(t *testing.T) {
		body := registerBody()
		body["email"] = "other@canalnord.example"
		body["accept_terms"] = false

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "accept_terms")
	})

	t.Run("bad org type", func(t *testing.T) {
		body := registerBody()
		body["email"] = "third@canalnord.example"
		body["org_type"] = "podcast"

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", registerBody())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("successful login sets cookie", func(t *testing.T) {
		body := map[string]string{
			"email":    "owner@canalnord.example",
			"password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)

		cookies := rr.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "token", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{
			"email":    "owner@canalnord.example",
			"password": "wrongpassword",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		require.NoError(t, tc.DB.Model(&models.User{}).
			Where("email = ?", "owner@canalnord.example").
			Update("status", models.UserStatusInactive).Error)

		body := map[string]string{
			"email":    "owner@canalnord.example",
			"password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/logout", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
