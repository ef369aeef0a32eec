package mocks

import (
	"context"

	"github.com/you/campusauth/domain"
)

// MockIdentityRepository implements domain.IdentityRepository interface for testing
type MockIdentityRepository struct {
	CreateFunc                    func(ctx context.Context, identity *domain.Identity) error
	FindByIDFunc                  func(ctx context.Context, id string) (*domain.Identity, error)
	FindByEmailFunc               func(ctx context.Context, email string) (*domain.Identity, error)
	ListAllFunc                   func(ctx context.Context) ([]*domain.Identity, error)
	ListByTenantFunc              func(ctx context.Context, tenantID string) ([]*domain.Identity, error)
	CountByTenantFunc             func(ctx context.Context, tenantID string) (*domain.TenantStats, error)
	UpdateProfileFunc             func(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Identity, error)
	SetPasswordHashFunc           func(ctx context.Context, id, hash string) error
	IncrementTokenVersionFunc     func(ctx context.Context, id string) error
	IncrementAllTokenVersionsFunc func(ctx context.Context) (int64, error)
}

// NewMockIdentityRepository creates a new MockIdentityRepository with default behaviors
func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{}
}

// Create creates a new identity
func (m *MockIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, identity)
	}
	// Default behavior: success
	return nil
}

// FindByID finds an identity by ID
func (m *MockIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrIdentityNotFound
}

// FindByEmail finds an identity by email
func (m *MockIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrIdentityNotFound
}

// ListAll lists every identity
func (m *MockIdentityRepository) ListAll(ctx context.Context) ([]*domain.Identity, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

// ListByTenant lists the identities of one tenant
func (m *MockIdentityRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Identity, error) {
	if m.ListByTenantFunc != nil {
		return m.ListByTenantFunc(ctx, tenantID)
	}
	return nil, nil
}

// CountByTenant returns tenant statistics
func (m *MockIdentityRepository) CountByTenant(ctx context.Context, tenantID string) (*domain.TenantStats, error) {
	if m.CountByTenantFunc != nil {
		return m.CountByTenantFunc(ctx, tenantID)
	}
	return &domain.TenantStats{}, nil
}

// UpdateProfile applies a conditional profile update
func (m *MockIdentityRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Identity, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, update)
	}
	// Default behavior: not found
	return nil, domain.ErrIdentityNotFound
}

// SetPasswordHash stores a new password hash and ends old sessions
func (m *MockIdentityRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	if m.SetPasswordHashFunc != nil {
		return m.SetPasswordHashFunc(ctx, id, hash)
	}
	return nil
}

// IncrementTokenVersion bumps one identity's token version
func (m *MockIdentityRepository) IncrementTokenVersion(ctx context.Context, id string) error {
	if m.IncrementTokenVersionFunc != nil {
		return m.IncrementTokenVersionFunc(ctx, id)
	}
	return nil
}

// IncrementAllTokenVersions bumps every identity's token version
func (m *MockIdentityRepository) IncrementAllTokenVersions(ctx context.Context) (int64, error) {
	if m.IncrementAllTokenVersionsFunc != nil {
		return m.IncrementAllTokenVersionsFunc(ctx)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.IdentityRepository = (*MockIdentityRepository)(nil)
