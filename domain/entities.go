package domain

import (
	"strings"
	"time"
)

// Role identifies which identity variant a token or record belongs to
type Role string

const (
	RoleStudent         Role = "student"
	RoleUniversityAdmin Role = "university-admin"
	RoleSuperAdmin      Role = "super-admin"
)

// IsAdmin reports whether the role signs in through the admin console
func (r Role) IsAdmin() bool {
	return r == RoleUniversityAdmin || r == RoleSuperAdmin
}

// SubscriptionStatus is the billing state of a university tenant
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionTrial    SubscriptionStatus = "trial"
)

// Valid reports whether s is one of the known subscription states
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionInactive, SubscriptionTrial:
		return true
	}
	return false
}

// Theme holds the tenant branding used by the mobile app
type Theme struct {
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
}

// DefaultTheme is applied to tenants created without branding
var DefaultTheme = Theme{PrimaryColor: "#00B4D8", AccentColor: "#FF7A00"}

// Tenant represents a university account. Domain is globally unique and
// is the only key used to route an email address to a tenant.
type Tenant struct {
	ID                    string
	Name                  string
	Domain                string
	LogoURL               string
	Theme                 Theme
	AdminEmail            string
	SubscriptionStatus    SubscriptionStatus
	SubscriptionExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Profile is the role-specific part of an identity. Exactly one of
// StudentProfile, UniversityAdminProfile or SuperAdminProfile.
type Profile interface {
	Role() Role
	isProfile()
}

// StudentProfile is the variant for app users created by OTP login
type StudentProfile struct {
	TenantID      string
	Department    string
	Year          int
	TrustScore    int
	VerifiedBadge bool
	ProfileImage  string
}

// UniversityAdminProfile is the variant for per-tenant console operators
type UniversityAdminProfile struct {
	TenantID     string
	PasswordHash string
}

// SuperAdminProfile is the variant for platform operators. It has no tenant.
type SuperAdminProfile struct {
	PasswordHash string
}

func (StudentProfile) Role() Role         { return RoleStudent }
func (UniversityAdminProfile) Role() Role { return RoleUniversityAdmin }
func (SuperAdminProfile) Role() Role      { return RoleSuperAdmin }

func (StudentProfile) isProfile()         {}
func (UniversityAdminProfile) isProfile() {}
func (SuperAdminProfile) isProfile()      {}

// Identity is a user or admin account. TokenVersion only ever grows;
// Revision guards profile writes against concurrent updates.
type Identity struct {
	ID           string
	Email        string
	Name         string
	TokenVersion int
	Revision     int
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role returns the role derived from the profile variant
func (i *Identity) Role() Role {
	if i.Profile == nil {
		return ""
	}
	return i.Profile.Role()
}

// TenantID returns the owning tenant, or "" for super admins
func (i *Identity) TenantID() string {
	switch p := i.Profile.(type) {
	case StudentProfile:
		return p.TenantID
	case UniversityAdminProfile:
		return p.TenantID
	}
	return ""
}

// PasswordHash returns the stored credential of admin variants
func (i *Identity) PasswordHash() string {
	switch p := i.Profile.(type) {
	case UniversityAdminProfile:
		return p.PasswordHash
	case SuperAdminProfile:
		return p.PasswordHash
	}
	return ""
}

// WithPasswordHash returns a copy of an admin profile with a new hash.
// Student profiles are returned unchanged.
func (i *Identity) WithPasswordHash(hash string) Profile {
	switch p := i.Profile.(type) {
	case UniversityAdminProfile:
		p.PasswordHash = hash
		return p
	case SuperAdminProfile:
		p.PasswordHash = hash
		return p
	}
	return i.Profile
}

// Student returns the student variant, if that is what the identity holds
func (i *Identity) Student() (StudentProfile, bool) {
	p, ok := i.Profile.(StudentProfile)
	return p, ok
}

// ProfileFields are the optional fields a student may send on first login
type ProfileFields struct {
	Name         string
	Department   string
	Year         int
	ProfileImage string
}

// ProfileUpdate is a conditional profile write. ExpectedRevision must
// match the stored revision or the write is rejected.
type ProfileUpdate struct {
	ExpectedRevision int
	Name             *string
	Department       *string
	Year             *int
	ProfileImage     *string
}

// CodeIssued is returned when a one-time code has been issued
type CodeIssued struct {
	TenantID   string
	TenantName string
}

// LoginResult is the outcome of a successful code verification or admin login
type LoginResult struct {
	Identity *Identity
	Tenant   *Tenant
	Token    string
}

// TokenClaims is the verified content of a session token
type TokenClaims struct {
	IdentityID   string
	Email        string
	Role         Role
	TenantID     string
	TokenVersion int
	KeyID        string
	IssuedAt     int64
	ExpiresAt    int64
}

// AuthContext is what the request authenticator attaches to a request
type AuthContext struct {
	Identity *Identity
	TenantID string
	Claims   *TokenClaims
}

// TenantStats is the per-tenant dashboard summary
type TenantStats struct {
	TotalUsers  int64 `json:"totalUsers"`
	ActiveUsers int64 `json:"activeUsers"`
	Admins      int64 `json:"admins"`
}

// EmailDomain returns the lower-cased substring after the last '@'
func EmailDomain(email string) (string, error) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email[at+1:]), nil
}

// LocalPart returns the part of email before the '@'
func LocalPart(email string) string {
	if at := strings.LastIndex(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// NormalizeEmail trims surrounding space and lower-cases the address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
