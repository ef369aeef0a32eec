package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireTenantContext fails closed when the authenticated identity has no
// tenant, e.g. a super admin token on a tenant-scoped route.
func RequireTenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if TenantID(c) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant context required"})
			return
		}
		c.Next()
	}
}

// TenantID returns the tenant attached by the authenticator, or ""
func TenantID(c *gin.Context) string {
	return c.GetString(ContextKeyTenantID)
}
