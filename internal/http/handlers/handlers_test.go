package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/you/campusauth/domain"
	"github.com/you/campusauth/internal/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testTenant() *domain.Tenant {
	return &domain.Tenant{
		ID:                 "tenant-1",
		Name:               "Test University",
		Domain:             "test.edu",
		Theme:              domain.DefaultTheme,
		AdminEmail:         "admin@test.edu",
		SubscriptionStatus: domain.SubscriptionActive,
		CreatedAt:          testNow,
	}
}

func testStudent() *domain.Identity {
	return &domain.Identity{
		ID:           "user-1",
		Email:        "alice@test.edu",
		Name:         "alice",
		TokenVersion: 1,
		Revision:     2,
		Profile:      domain.StudentProfile{TenantID: "tenant-1", TrustScore: 50, VerifiedBadge: true},
		CreatedAt:    testNow,
	}
}

func testAdmin() *domain.Identity {
	return &domain.Identity{
		ID:       "admin-1",
		Email:    "admin@test.edu",
		Name:     "Admin",
		Revision: 4,
		Profile:  domain.UniversityAdminProfile{TenantID: "tenant-1", PasswordHash: "secret-hash"},
	}
}

// withIdentity stands in for the authenticator in handler tests
func withIdentity(identity *domain.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyAuth, &domain.AuthContext{Identity: identity, TenantID: identity.TenantID()})
		c.Set(middleware.ContextKeyUserID, identity.ID)
		c.Set(middleware.ContextKeyUserRole, string(identity.Role()))
		c.Set(middleware.ContextKeyTenantID, identity.TenantID())
		c.Set(middleware.ContextKeyEmail, identity.Email)
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}
