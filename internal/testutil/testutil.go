package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ntumia/mediahub/internal/auth"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/policy"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.MediaOrganization{},
		&models.User{},
		&models.Content{},
		&models.Download{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestOrg creates a test organization in the given status
func CreateTestOrg(t *testing.T, db *gorm.DB, status models.OrgStatus) *models.MediaOrganization {
	t.Helper()

	org := &models.MediaOrganization{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:         "Test Media " + uuid.New().String()[:8],
		Type:         models.OrgTypeTV,
		Status:       status,
		ContactName:  "Test Contact",
		ContactEmail: "contact-" + uuid.New().String()[:8] + "@example.com",
		Subscription: models.SubscriptionFree,
		StorageLimit: 10 * 1024 * 1024 * 1024,
		Version:      1,
	}

	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateTestUser creates a test user with the given role. org may be nil for
// platform-level accounts.
func CreateTestUser(t *testing.T, db *gorm.DB, org *models.MediaOrganization, role policy.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         "Test User",
		Role:         string(role),
		Status:       models.UserStatusActive,
	}
	if org != nil {
		user.OrganizationID = &org.ID
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user.Organization = org
	return user
}

// CreateTestContent creates a content item owned by org and uploaded by user
func CreateTestContent(t *testing.T, db *gorm.DB, org *models.MediaOrganization, uploader *models.User, status models.ContentStatus) *models.Content {
	t.Helper()

	content := &models.Content{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID: org.ID,
		UploaderID:     uploader.ID,
		Title:          "Test Content " + uuid.New().String()[:8],
		Type:           models.ContentTypeVideo,
		Format:         "mp4",
		FileSize:       1024 * 1024,
		Language:       "fr",
		License:        models.LicensePublic,
		Status:         status,
		ObjectKey:      "content/" + uuid.New().String(),
		Version:        1,
	}

	if err := db.Create(content).Error; err != nil {
		t.Fatalf("failed to create test content: %v", err)
	}

	return content
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	orgID := uuid.Nil
	if user.OrganizationID != nil {
		orgID = *user.OrganizationID
	}

	token, err := jwtService.GenerateToken(user.ID, orgID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Org        *models.MediaOrganization
	Admin      *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, an active org, a
// platform admin account and its token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	org := CreateTestOrg(t, db, models.OrgStatusActive)
	admin := CreateTestUser(t, db, org, policy.RoleAdmin)
	token := GenerateTestToken(t, jwtService, admin)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Org:        org,
		Admin:      admin,
		Token:      token,
	}
}

// Cleanup closes the test database
func (tc *TestSetup) Cleanup() {
	if sqlDB, err := tc.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
