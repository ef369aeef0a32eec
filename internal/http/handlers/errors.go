package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/campusauth/domain"
	"github.com/you/campusauth/internal/http/middleware"
)

// writeError is the single mapping from domain errors to HTTP responses.
// Unknown errors become a generic 500 and are attached to the gin
// context so the request logger records them.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPublicDomain):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Public email domains not allowed",
			"message": "Please use your university email address",
		})
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidTenantState),
		errors.Is(err, domain.ErrIncorrectPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTenantNotOnboarded):
		c.JSON(http.StatusNotFound, gin.H{
			"error":           "University not found",
			"message":         "Your university is not yet onboarded. Please contact admin.",
			"needsOnboarding": true,
		})
	case errors.Is(err, domain.ErrTenantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
	case errors.Is(err, domain.ErrIdentityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, domain.ErrInvalidOrExpiredCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired OTP"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, domain.ErrTokenRequired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenInvalidated):
		status, msg := middleware.AuthFailure(err)
		c.JSON(status, gin.H{"error": msg, "logout": true})
	case errors.Is(err, domain.ErrNotStudent),
		errors.Is(err, domain.ErrNotAdmin),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrTenantContextRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTenantDomainTaken),
		errors.Is(err, domain.ErrIdentityExists),
		errors.Is(err, domain.ErrTenantInUse),
		errors.Is(err, domain.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// badRequest reports a malformed request body
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}
