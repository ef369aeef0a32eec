package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/campusauth/domain"
)

// userView is the client representation of an identity. Credentials
// never leave the service.
func userView(identity *domain.Identity) gin.H {
	if identity == nil {
		return nil
	}
	view := gin.H{
		"id":           identity.ID,
		"email":        identity.Email,
		"name":         identity.Name,
		"role":         identity.Role(),
		"tokenVersion": identity.TokenVersion,
		"revision":     identity.Revision,
		"createdAt":    identity.CreatedAt,
	}
	if tenantID := identity.TenantID(); tenantID != "" {
		view["universityId"] = tenantID
	}
	if student, ok := identity.Student(); ok {
		view["department"] = student.Department
		view["year"] = student.Year
		view["trustScore"] = student.TrustScore
		view["verifiedBadge"] = student.VerifiedBadge
		view["profileImage"] = student.ProfileImage
	}
	return view
}

func userViews(identities []*domain.Identity) []gin.H {
	out := make([]gin.H, 0, len(identities))
	for _, identity := range identities {
		out = append(out, userView(identity))
	}
	return out
}

type themeView struct {
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
}

type tenantView struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Domain                string     `json:"domain"`
	LogoURL               string     `json:"logoUrl,omitempty"`
	Theme                 themeView  `json:"theme"`
	AdminEmail            string     `json:"adminEmail,omitempty"`
	SubscriptionStatus    string     `json:"subscriptionStatus"`
	SubscriptionExpiresAt *time.Time `json:"subscriptionExpiresAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

func newTenantView(tenant *domain.Tenant) *tenantView {
	if tenant == nil {
		return nil
	}
	return &tenantView{
		ID:                    tenant.ID,
		Name:                  tenant.Name,
		Domain:                tenant.Domain,
		LogoURL:               tenant.LogoURL,
		Theme:                 themeView(tenant.Theme),
		AdminEmail:            tenant.AdminEmail,
		SubscriptionStatus:    string(tenant.SubscriptionStatus),
		SubscriptionExpiresAt: tenant.SubscriptionExpiresAt,
		CreatedAt:             tenant.CreatedAt,
	}
}

func tenantViews(tenants []*domain.Tenant) []*tenantView {
	out := make([]*tenantView, 0, len(tenants))
	for _, tenant := range tenants {
		out = append(out, newTenantView(tenant))
	}
	return out
}
