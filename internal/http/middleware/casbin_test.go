package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/you/campusauth/internal/infrastructure/auth"
	"github.com/you/campusauth/internal/infrastructure/database"
	"github.com/you/campusauth/internal/services"
)

// createTestEnforcer creates an in-memory enforcer loaded with the default policies
func createTestEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	e := newMemoryEnforcer(t)
	policies := services.NewPolicyServiceWithEnforcer(services.NewCasbinEnforcerWrapper(e))
	require.NoError(t, policies.SeedDefaults())
	return e
}

// newMemoryEnforcer builds an enforcer over a private in-memory database
func newMemoryEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:", logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	cas, err := auth.NewCasbinService(db, "")
	require.NoError(t, err)
	return cas.E
}

func newCasbinRouter(t *testing.T, e *casbin.Enforcer, userID, role, tenantID string) *gin.Engine {
	t.Helper()

	router := gin.New()
	identity := func(c *gin.Context) {
		if userID != "" {
			c.Set(ContextKeyUserID, userID)
		}
		if role != "" {
			c.Set(ContextKeyUserRole, role)
		}
		c.Set(ContextKeyTenantID, tenantID)
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	cb := NewCasbinMW(e, zap.NewNop()).Enforce()

	router.GET("/admin/university/:universityId/users", identity, cb, ok)
	router.GET("/admin/university/:universityId/stats", identity, cb, ok)
	router.GET("/admin/universities", identity, cb, ok)
	router.DELETE("/admin/universities/:id", identity, cb, ok)
	router.POST("/auth/logout-all", identity, cb, ok)
	router.PUT("/admin/change-password", identity, cb, ok)
	return router
}

func TestCasbinMW_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := createTestEnforcer(t)

	tests := []struct {
		name           string
		userID         string
		role           string
		tenantID       string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "university admin reads own tenant users", userID: "a1", role: "university-admin", tenantID: "t1", method: "GET", path: "/admin/university/t1/users", expectedStatus: http.StatusOK},
		{name: "university admin reads own tenant stats", userID: "a1", role: "university-admin", tenantID: "t1", method: "GET", path: "/admin/university/t1/stats", expectedStatus: http.StatusOK},
		{name: "university admin blocked from other tenant", userID: "a1", role: "university-admin", tenantID: "t1", method: "GET", path: "/admin/university/t2/users", expectedStatus: http.StatusForbidden},
		{name: "university admin without tenant claim", userID: "a1", role: "university-admin", tenantID: "", method: "GET", path: "/admin/university/t1/users", expectedStatus: http.StatusForbidden},
		{name: "super admin reads any tenant", userID: "root", role: "super-admin", method: "GET", path: "/admin/university/t2/users", expectedStatus: http.StatusOK},
		{name: "super admin manages universities", userID: "root", role: "super-admin", method: "DELETE", path: "/admin/universities/t2", expectedStatus: http.StatusOK},
		{name: "university admin cannot list universities", userID: "a1", role: "university-admin", tenantID: "t1", method: "GET", path: "/admin/universities", expectedStatus: http.StatusForbidden},
		{name: "university admin cannot logout everyone", userID: "a1", role: "university-admin", tenantID: "t1", method: "POST", path: "/auth/logout-all", expectedStatus: http.StatusForbidden},
		{name: "super admin can logout everyone", userID: "root", role: "super-admin", method: "POST", path: "/auth/logout-all", expectedStatus: http.StatusOK},
		{name: "any admin changes password", userID: "a1", role: "university-admin", tenantID: "t1", method: "PUT", path: "/admin/change-password", expectedStatus: http.StatusOK},
		{name: "student has no admin routes", userID: "u1", role: "student", tenantID: "t1", method: "GET", path: "/admin/university/t1/users", expectedStatus: http.StatusForbidden},
		{name: "missing identity", method: "GET", path: "/admin/universities", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newCasbinRouter(t, e, tt.userID, tt.role, tt.tenantID)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestValidateCondition(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x?tenant=t1", nil)
	c.Request.Header.Set("X-Tenant", "t1")
	c.Params = gin.Params{{Key: "universityId", Value: "t1"}}
	claims := map[string]string{"tenant_id": "t1", "user_id": "u1"}

	tests := []struct {
		condition string
		expected  bool
		wantErr   bool
	}{
		{condition: "path.universityId==token.tenant_id", expected: true},
		{condition: "query.tenant==token.tenant_id", expected: true},
		{condition: "header.X-Tenant==token.tenant_id", expected: true},
		{condition: "path.universityId==token.user_id", expected: false},
		{condition: "path.missing==token.tenant_id", wantErr: true},
		{condition: "path.universityId==token.phone", wantErr: true},
		{condition: "body.id==token.user_id", wantErr: true},
		{condition: "path.universityId!=token.tenant_id", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			ok, err := validateCondition(ginValues(c), tt.condition, claims)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestPathParams(t *testing.T) {
	assert.Equal(t, map[string]string{"universityId": "t1"}, PathParams("/admin/university/:universityId/users", "/admin/university/t1/users"))
	assert.Equal(t, map[string]string{"id": "t9"}, PathParams("/admin/universities/:id", "/admin/universities/t9/"))
	assert.Empty(t, PathParams("/admin/universities/:id", "/admin/universities"))
}

func TestCasbinMW_Authorize(t *testing.T) {
	mw := NewCasbinMW(createTestEnforcer(t), zap.NewNop())
	claims := map[string]string{"user_id": "a1", "role": "university-admin", "tenant_id": "t1"}

	ok, err := mw.Authorize("university-admin", "/admin/university/t1/stats", http.MethodGet, nil, nil, claims)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mw.Authorize("university-admin", "/admin/university/t2/stats", http.MethodGet, nil, nil, claims)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = mw.Authorize("university-admin", "/admin/universities", http.MethodGet, nil, nil, claims)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = mw.Authorize("super-admin", "/admin/universities", http.MethodPost, nil, nil, map[string]string{"user_id": "root", "role": "super-admin"})
	require.NoError(t, err)
	assert.True(t, ok)
}
