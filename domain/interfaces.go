package domain

import (
	"context"
	"time"
)

// TenantRepository defines tenant (university) data access operations
type TenantRepository interface {
	Create(ctx context.Context, tenant *Tenant) error
	FindByID(ctx context.Context, id string) (*Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*Tenant, error)
	ListActive(ctx context.Context) ([]*Tenant, error)
	ListAll(ctx context.Context) ([]*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
	UpdateSubscription(ctx context.Context, id string, status SubscriptionStatus, expiresAt *time.Time) (*Tenant, error)
	Delete(ctx context.Context, id string) error
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

// IdentityRepository defines identity data access operations
type IdentityRepository interface {
	Create(ctx context.Context, identity *Identity) error
	FindByID(ctx context.Context, id string) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	ListAll(ctx context.Context) ([]*Identity, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Identity, error)
	CountByTenant(ctx context.Context, tenantID string) (*TenantStats, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*Identity, error)
	// SetPasswordHash stores hash and bumps the token version in one write
	SetPasswordHash(ctx context.Context, id, hash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	IncrementAllTokenVersions(ctx context.Context) (int64, error)
}

// CodeStore holds one-time codes keyed by email with a native TTL
type CodeStore interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	TakeIfMatch(ctx context.Context, email, code string) (bool, error)
}

// EmailMessage is a single outbound email
type EmailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers outbound email
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// OTPService issues and verifies one-time login codes
type OTPService interface {
	RequestCode(ctx context.Context, email string) (*CodeIssued, error)
	VerifyCode(ctx context.Context, email, code string) error
}

// AuthService defines authentication business logic
type AuthService interface {
	VerifyAndLogin(ctx context.Context, email, code string, fields ProfileFields) (*LoginResult, error)
	AdminLogin(ctx context.Context, email, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*AuthContext, error)
	Me(ctx context.Context, identityID string) (*Identity, *Tenant, error)
	Logout(ctx context.Context, identityID string) error
	LogoutAll(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, identityID string, update ProfileUpdate) (*Identity, error)
	ChangePassword(ctx context.Context, identityID, current, next string) error
}

// TenantService is the tenant directory plus its administrative operations
type TenantService interface {
	ListActive(ctx context.Context) ([]*Tenant, error)
	ListAll(ctx context.Context) ([]*Tenant, error)
	Get(ctx context.Context, id string) (*Tenant, error)
	Create(ctx context.Context, req CreateTenantRequest) (*CreatedTenant, error)
	Update(ctx context.Context, id string, req UpdateTenantRequest) (*Tenant, error)
	UpdateSubscription(ctx context.Context, id string, status SubscriptionStatus, expiresAt *time.Time) (*Tenant, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (*TenantStats, error)
	Members(ctx context.Context, id string) ([]*Identity, error)
	ExpireSubscriptions(ctx context.Context) (int64, error)
}

// CreateTenantRequest carries the fields an operator supplies for a new tenant
type CreateTenantRequest struct {
	Name          string
	Domain        string
	AdminEmail    string
	AdminPassword string
	LogoURL       string
}

// UpdateTenantRequest carries editable tenant fields; nil leaves a field alone
type UpdateTenantRequest struct {
	Name       *string
	Domain     *string
	AdminEmail *string
	LogoURL    *string
}

// CreatedTenant is the tenant plus its freshly created university admin
type CreatedTenant struct {
	Tenant        *Tenant
	Admin         *Identity
	AdminPassword string
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService mints and verifies signed session tokens
type TokenService interface {
	Mint(identity *Identity, ttl time.Duration) (string, error)
	Validate(token string) (*TokenClaims, error)
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action, rule string) error
	RemovePolicy(role, resource, action, rule string) error
	GetPolicies() [][]string
	SeedDefaults() error
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
