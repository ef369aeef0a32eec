package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/campusauth/domain"
)

// Keys under which the authenticator stores request identity
const (
	ContextKeyAuth     = "auth_context"
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
	ContextKeyTenantID = "tenant_id"
	ContextKeyEmail    = "email"
)

// AuthMW resolves bearer tokens into an authenticated identity
type AuthMW struct {
	authSvc domain.AuthService
	logger  *zap.Logger
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(authSvc domain.AuthService, logger *zap.Logger) *AuthMW {
	return &AuthMW{authSvc: authSvc, logger: logger}
}

// WithJWT returns the authentication middleware function. Every failure
// carries "logout": true so clients drop their stored token.
func (mw *AuthMW) WithJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))

		auth, err := mw.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			status, msg := AuthFailure(err)
			if status == http.StatusInternalServerError {
				mw.logger.Error("authentication lookup failed", zap.Error(err))
			}
			body := gin.H{"error": msg}
			if status != http.StatusInternalServerError {
				body["logout"] = true
			}
			c.AbortWithStatusJSON(status, body)
			return
		}

		c.Set(ContextKeyAuth, auth)
		c.Set(ContextKeyUserID, auth.Identity.ID)
		c.Set(ContextKeyUserRole, string(auth.Identity.Role()))
		c.Set(ContextKeyTenantID, auth.TenantID)
		c.Set(ContextKeyEmail, auth.Identity.Email)

		c.Next()
	}
}

// AuthFailure maps an authentication error to a status and client message
func AuthFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTokenRequired):
		return http.StatusUnauthorized, "token required"
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusForbidden, "invalid or expired token"
	case errors.Is(err, domain.ErrIdentityNotFound):
		return http.StatusUnauthorized, "identity not found"
	case errors.Is(err, domain.ErrTokenInvalidated):
		return http.StatusUnauthorized, "token invalidated"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// BearerToken extracts the token from an Authorization header value.
// Anything other than "Bearer <token>" yields "".
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthFromContext returns what WithJWT attached to the request
func AuthFromContext(c *gin.Context) (*domain.AuthContext, bool) {
	v, ok := c.Get(ContextKeyAuth)
	if !ok {
		return nil, false
	}
	auth, ok := v.(*domain.AuthContext)
	return auth, ok && auth != nil
}
