package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/campusauth/domain"
)

// UniversityHandlers serves the public tenant directory
type UniversityHandlers struct {
	tenantSvc domain.TenantService
}

func NewUniversityHandlers(tenantSvc domain.TenantService) *UniversityHandlers {
	return &UniversityHandlers{tenantSvc: tenantSvc}
}

// List handles GET /universities/list. Only active tenants are shown.
func (h *UniversityHandlers) List(c *gin.Context) {
	tenants, err := h.tenantSvc.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, gin.H{
			"id":      t.ID,
			"name":    t.Name,
			"domain":  t.Domain,
			"logoUrl": t.LogoURL,
			"theme":   themeView(t.Theme),
		})
	}
	c.JSON(http.StatusOK, out)
}
