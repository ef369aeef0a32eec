package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/campusauth/domain"
	"github.com/you/campusauth/internal/http/middleware"
)

// AuthHandlers serves the student sign-in flow and session endpoints
type AuthHandlers struct {
	authSvc domain.AuthService
	otpSvc  domain.OTPService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, otpSvc domain.OTPService) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		otpSvc:  otpSvc,
	}
}

// RequestOTPRequest represents a code request
type RequestOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyOTPRequest represents a code verification. The profile fields are
// only used when the identity is created.
type VerifyOTPRequest struct {
	Email        string `json:"email" binding:"required"`
	OTP          string `json:"otp" binding:"required"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Year         int    `json:"year"`
	ProfileImage string `json:"profileImage"`
}

// UpdateMeRequest represents a profile update. Revision is the value the
// client last read; when omitted the current revision is used.
type UpdateMeRequest struct {
	Revision     *int    `json:"revision"`
	Name         *string `json:"name"`
	Department   *string `json:"department"`
	Year         *int    `json:"year"`
	ProfileImage *string `json:"profileImage"`
}

// RequestOTP handles POST /auth/request-otp
func (h *AuthHandlers) RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	issued, err := h.otpSvc.RequestCode(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Please verify OTP sent to your email",
		"universityId":   issued.TenantID,
		"universityName": issued.TenantName,
	})
}

// VerifyOTP handles POST /auth/verify-otp
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and OTP are required"})
		return
	}

	result, err := h.authSvc.VerifyAndLogin(c.Request.Context(), req.Email, req.OTP, domain.ProfileFields{
		Name:         req.Name,
		Department:   req.Department,
		Year:         req.Year,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      result.Token,
		"user":       userView(result.Identity),
		"university": newTenantView(result.Tenant),
	})
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, tenant, err := h.authSvc.Me(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       userView(identity),
		"university": newTenantView(tenant),
	})
}

// Logout handles POST /auth/logout. Every session of the caller ends.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), c.GetString(middleware.ContextKeyUserID)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// LogoutAll handles POST /auth/logout-all
func (h *AuthHandlers) LogoutAll(c *gin.Context) {
	n, err := h.authSvc.LogoutAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invalidated": n})
}

// UpdateMe handles PUT /users/me
func (h *AuthHandlers) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
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
		Name:             req.Name,
		Department:       req.Department,
		Year:             req.Year,
		ProfileImage:     req.ProfileImage,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userView(updated)})
}

// currentRevision returns the client's revision, or the stored one when
// the client did not send any.
func currentRevision(c *gin.Context, authSvc domain.AuthService, identityID string, sent *int) (int, error) {
	if sent != nil {
		return *sent, nil
	}
	if auth, ok := middleware.AuthFromContext(c); ok && auth.Identity.ID == identityID {
		return auth.Identity.Revision, nil
	}
	identity, _, err := authSvc.Me(c.Request.Context(), identityID)
	if err != nil {
		return 0, err
	}
	return identity.Revision, nil
}
