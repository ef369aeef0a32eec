package mocks

import (
	"context"

	"github.com/you/campusauth/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	VerifyAndLoginFunc func(ctx context.Context, email, code string, fields domain.ProfileFields) (*domain.LoginResult, error)
	AdminLoginFunc     func(ctx context.Context, email, password string) (*domain.LoginResult, error)
	AuthenticateFunc   func(ctx context.Context, token string) (*domain.AuthContext, error)
	MeFunc             func(ctx context.Context, identityID string) (*domain.Identity, *domain.Tenant, error)
	LogoutFunc         func(ctx context.Context, identityID string) error
	LogoutAllFunc      func(ctx context.Context) (int64, error)
	UpdateProfileFunc  func(ctx context.Context, identityID string, update domain.ProfileUpdate) (*domain.Identity, error)
	ChangePasswordFunc func(ctx context.Context, identityID, current, next string) error
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// VerifyAndLogin verifies a code and logs the student in
func (m *MockAuthService) VerifyAndLogin(ctx context.Context, email, code string, fields domain.ProfileFields) (*domain.LoginResult, error) {
	if m.VerifyAndLoginFunc != nil {
		return m.VerifyAndLoginFunc(ctx, email, code, fields)
	}
	return nil, domain.ErrInvalidOrExpiredCode
}

// AdminLogin logs an admin in with a password
func (m *MockAuthService) AdminLogin(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	if m.AdminLoginFunc != nil {
		return m.AdminLoginFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

// Authenticate resolves a bearer token
func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*domain.AuthContext, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	return nil, domain.ErrTokenInvalid
}

// Me returns the identity and its tenant
func (m *MockAuthService) Me(ctx context.Context, identityID string) (*domain.Identity, *domain.Tenant, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, identityID)
	}
	return nil, nil, domain.ErrIdentityNotFound
}

// Logout ends every session of an identity
func (m *MockAuthService) Logout(ctx context.Context, identityID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, identityID)
	}
	return nil
}

// LogoutAll ends every session of every identity
func (m *MockAuthService) LogoutAll(ctx context.Context) (int64, error) {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx)
	}
	return 0, nil
}

// UpdateProfile updates profile fields
func (m *MockAuthService) UpdateProfile(ctx context.Context, identityID string, update domain.ProfileUpdate) (*domain.Identity, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, identityID, update)
	}
	return nil, domain.ErrIdentityNotFound
}

// ChangePassword changes an admin password
func (m *MockAuthService) ChangePassword(ctx context.Context, identityID, current, next string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, identityID, current, next)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
