package domain

import "errors"

// Validation errors
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPublicDomain       = errors.New("public email domains not allowed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTenantState = errors.New("invalid subscription status")
)

// Tenant errors
var (
	ErrTenantNotOnboarded = errors.New("university not onboarded")
	ErrTenantNotFound     = errors.New("university not found")
	ErrTenantDomainTaken  = errors.New("university domain already registered")
	ErrTenantInUse        = errors.New("university still has identities")
)

// Code errors. Wrong, expired and never-issued codes all collapse into one.
var (
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)

// Identity errors
var (
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrIdentityExists     = errors.New("identity already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConcurrentUpdate   = errors.New("identity was modified concurrently")
	ErrNotStudent         = errors.New("operation only applies to students")
	ErrNotAdmin           = errors.New("admin access required")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
)

// Token errors
var (
	ErrTokenRequired    = errors.New("token required")
	ErrTokenInvalid     = errors.New("invalid or expired token")
	ErrTokenInvalidated = errors.New("token invalidated")
	ErrUnknownKeyID     = errors.New("unknown signing key")
)

// Authorization errors
var (
	ErrTenantContextRequired = errors.New("tenant context required")
	ErrForbidden             = errors.New("access denied")
)
