package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/campusauth/domain"
	"github.com/you/campusauth/internal/http/middleware"
)

// AdminHandlers serves the admin console: login, own profile, and tenant
// administration. Route access is decided by the Casbin middleware.
type AdminHandlers struct {
	authSvc    domain.AuthService
	tenantSvc  domain.TenantService
	identities domain.IdentityRepository
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(authSvc domain.AuthService, tenantSvc domain.TenantService, identities domain.IdentityRepository) *AdminHandlers {
	return &AdminHandlers{
		authSvc:    authSvc,
		tenantSvc:  tenantSvc,
		identities: identities,
	}
}

// AdminLoginRequest represents admin login request
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateAdminProfileRequest represents an admin profile update
type UpdateAdminProfileRequest struct {
	Revision *int   `json:"revision"`
	Name     string `json:"name" binding:"required"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// CreateUniversityRequest represents tenant onboarding
type CreateUniversityRequest struct {
	Name          string `json:"name" binding:"required"`
	Domain        string `json:"domain" binding:"required"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
	LogoURL       string `json:"logoUrl"`
}

// UpdateUniversityRequest represents editable tenant fields
type UpdateUniversityRequest struct {
	Name       *string `json:"name"`
	Domain     *string `json:"domain"`
	AdminEmail *string `json:"adminEmail"`
	LogoURL    *string `json:"logoUrl"`
}

// UpdateSubscriptionRequest represents a subscription change
type UpdateSubscriptionRequest struct {
	Status    string     `json:"status" binding:"required"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func adminView(identity *domain.Identity) gin.H {
	view := gin.H{
		"id":    identity.ID,
		"email": identity.Email,
		"name":  identity.Name,
		"role":  identity.Role(),
	}
	if tenantID := identity.TenantID(); tenantID != "" {
		view["universityId"] = tenantID
	}
	return view
}

// Login handles POST /admin/login
func (h *AdminHandlers) Login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authSvc.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      result.Token,
		"admin":      adminView(result.Identity),
		"university": newTenantView(result.Tenant),
	})
}

// Profile handles GET /admin/profile
func (h *AdminHandlers) Profile(c *gin.Context) {
	identity, tenant, err := h.authSvc.Me(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		writeError(c, err)
		return
	}
	if !identity.Role().IsAdmin() {
		writeError(c, domain.ErrNotAdmin)
		return
	}

	view := adminView(identity)
	view["revision"] = identity.Revision
	view["createdAt"] = identity.CreatedAt
	c.JSON(http.StatusOK, gin.H{"admin": view, "university": newTenantView(tenant)})
}

// UpdateProfile handles PUT /admin/profile
func (h *AdminHandlers) UpdateProfile(c *gin.Context) {
	var req UpdateAdminProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	identityID := c.GetString(middleware.ContextKeyUserID)
	revision, err := currentRevision(c, h.authSvc, identityID, req.Revision)
	if err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.authSvc.UpdateProfile(c.Request.Context(), identityID, domain.ProfileUpdate{
		ExpectedRevision: revision,
		Name:             &req.Name,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": adminView(updated)})
}

// ChangePassword handles PUT /admin/change-password
func (h *AdminHandlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	err := h.authSvc.ChangePassword(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ListUniversities handles GET /admin/universities
func (h *AdminHandlers) ListUniversities(c *gin.Context) {
	tenants, err := h.tenantSvc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenantViews(tenants))
}

// GetUniversity handles GET /admin/universities/:id
func (h *AdminHandlers) GetUniversity(c *gin.Context) {
	tenant, err := h.tenantSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTenantView(tenant))
}

// CreateUniversity handles POST /admin/universities
func (h *AdminHandlers) CreateUniversity(c *gin.Context) {
	var req CreateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.tenantSvc.Create(c.Request.Context(), domain.CreateTenantRequest{
		Name:          req.Name,
		Domain:        req.Domain,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
		LogoURL:       req.LogoURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"university": newTenantView(created.Tenant),
		"admin": gin.H{
			"id":       created.Admin.ID,
			"email":    created.Admin.Email,
			"password": created.AdminPassword,
		},
	})
}

// UpdateUniversity handles PUT /admin/universities/:id
func (h *AdminHandlers) UpdateUniversity(c *gin.Context) {
	var req UpdateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenant, err := h.tenantSvc.Update(c.Request.Context(), c.Param("id"), domain.UpdateTenantRequest{
		Name:       req.Name,
		Domain:     req.Domain,
		AdminEmail: req.AdminEmail,
		LogoURL:    req.LogoURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTenantView(tenant))
}

// UpdateSubscription handles PATCH /admin/universities/:id/subscription
func (h *AdminHandlers) UpdateSubscription(c *gin.Context) {
	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenant, err := h.tenantSvc.UpdateSubscription(c.Request.Context(), c.Param("id"), domain.SubscriptionStatus(req.Status), req.ExpiresAt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTenantView(tenant))
}

// DeleteUniversity handles DELETE /admin/universities/:id
func (h *AdminHandlers) DeleteUniversity(c *gin.Context) {
	if err := h.tenantSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "University deleted"})
}

// ListUsers handles GET /admin/users
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	identities, err := h.identities.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userViews(identities))
}

// UniversityUsers handles GET /admin/university/:universityId/users
func (h *AdminHandlers) UniversityUsers(c *gin.Context) {
	members, err := h.tenantSvc.Members(c.Request.Context(), c.Param("universityId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userViews(members))
}

// UniversityStats handles GET /admin/university/:universityId/stats
func (h *AdminHandlers) UniversityStats(c *gin.Context) {
	stats, err := h.tenantSvc.Stats(c.Request.Context(), c.Param("universityId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
