package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/casbin/casbin/v2/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/campusauth/domain"
	"github.com/you/campusauth/internal/http/middleware"
)

// ExternalAuthzHandlers lets sibling services and proxies check a campus
// session token without linking the auth service
type ExternalAuthzHandlers struct {
	authSvc  domain.AuthService
	policies domain.PolicyService
	casbinMW *middleware.CasbinMW
	logger   *zap.Logger
}

// NewExternalAuthzHandlers creates new external authorization handlers
func NewExternalAuthzHandlers(
	authSvc domain.AuthService,
	policies domain.PolicyService,
	casbinMW *middleware.CasbinMW,
	logger *zap.Logger,
) *ExternalAuthzHandlers {
	return &ExternalAuthzHandlers{
		authSvc:  authSvc,
		policies: policies,
		casbinMW: casbinMW,
		logger:   logger,
	}
}

// AuthzRequest is either a bare token or an Envoy ext_authz style
// envelope describing the request being made
type AuthzRequest struct {
	Token      string `json:"token"`
	Attributes struct {
		Request struct {
			HTTP struct {
				Method  string            `json:"method"`
				Path    string            `json:"path"`
				Headers map[string]string `json:"headers"`
			} `json:"http"`
		} `json:"request"`
	} `json:"attributes"`
}

// AuthzResponse is returned for an allowed request
type AuthzResponse struct {
	Allowed    bool              `json:"allowed"`
	IdentityID string            `json:"identityId"`
	Role       string            `json:"role"`
	TenantID   string            `json:"tenantId,omitempty"`
	Headers    map[string]string `json:"headers"`
}

func (r *AuthzRequest) token(c *gin.Context) string {
	if r.Token != "" {
		return r.Token
	}
	for name, value := range r.Attributes.Request.HTTP.Headers {
		if strings.EqualFold(name, "Authorization") {
			return middleware.BearerToken(value)
		}
	}
	return middleware.BearerToken(c.GetHeader("Authorization"))
}

func (r *AuthzRequest) headers() http.Header {
	h := http.Header{}
	for name, value := range r.Attributes.Request.HTTP.Headers {
		h.Set(name, value)
	}
	return h
}

// Authorize handles POST /external/authz
func (h *ExternalAuthzHandlers) Authorize(c *gin.Context) {
	var req AuthzRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	auth, err := h.authSvc.Authenticate(c.Request.Context(), req.token(c))
	if err != nil {
		h.deny(c, err)
		return
	}

	target := req.Attributes.Request.HTTP
	if target.Path != "" {
		path, rawQuery, _ := strings.Cut(target.Path, "?")
		query, _ := url.ParseQuery(rawQuery)
		method := strings.ToUpper(target.Method)
		if method == "" {
			method = http.MethodGet
		}

		if h.protected(path) {
			role := string(auth.Identity.Role())
			allowed, err := h.casbinMW.Authorize(role, path, method, query, req.headers(), middleware.ClaimsOf(auth))
			if err != nil {
				h.logger.Error("external authorization check failed", zap.String("path", path), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"allowed": false, "error": "Internal server error"})
				return
			}
			if !allowed {
				c.JSON(http.StatusForbidden, gin.H{"allowed": false, "error": "Access denied"})
				return
			}
		}
	}

	c.JSON(http.StatusOK, AuthzResponse{
		Allowed:    true,
		IdentityID: auth.Identity.ID,
		Role:       string(auth.Identity.Role()),
		TenantID:   auth.TenantID,
		Headers: map[string]string{
			"x-user-id":   auth.Identity.ID,
			"x-user-role": string(auth.Identity.Role()),
			"x-tenant-id": auth.TenantID,
		},
	})
}

// protected reports whether any policy covers path. Paths no policy
// mentions only need a valid session.
func (h *ExternalAuthzHandlers) protected(path string) bool {
	for _, policy := range h.policies.GetPolicies() {
		if len(policy) > 1 && util.KeyMatch2(path, policy[1]) {
			return true
		}
	}
	return false
}

func (h *ExternalAuthzHandlers) deny(c *gin.Context, err error) {
	status, msg := middleware.AuthFailure(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("external authentication failed", zap.Error(err))
		c.JSON(status, gin.H{"allowed": false, "error": msg})
		return
	}
	c.JSON(status, gin.H{"allowed": false, "error": msg, "logout": true})
}

// Health handles GET /external/health
func (h *ExternalAuthzHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "external-authz",
	})
}
