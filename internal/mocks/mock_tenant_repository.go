package mocks

import (
	"context"
	"time"

	"github.com/you/campusauth/domain"
)

// MockTenantRepository implements domain.TenantRepository interface for testing
type MockTenantRepository struct {
	CreateFunc              func(ctx context.Context, tenant *domain.Tenant) error
	FindByIDFunc            func(ctx context.Context, id string) (*domain.Tenant, error)
	FindByDomainFunc        func(ctx context.Context, emailDomain string) (*domain.Tenant, error)
	ListActiveFunc          func(ctx context.Context) ([]*domain.Tenant, error)
	ListAllFunc             func(ctx context.Context) ([]*domain.Tenant, error)
	UpdateFunc              func(ctx context.Context, tenant *domain.Tenant) error
	UpdateSubscriptionFunc  func(ctx context.Context, id string, status domain.SubscriptionStatus, expiresAt *time.Time) (*domain.Tenant, error)
	DeleteFunc              func(ctx context.Context, id string) error
	ExpireSubscriptionsFunc func(ctx context.Context, now time.Time) (int64, error)

	// FindByDomainCalls counts lookups so tests can assert none happened
	FindByDomainCalls int
}

// NewMockTenantRepository creates a new MockTenantRepository with default behaviors
func NewMockTenantRepository() *MockTenantRepository {
	return &MockTenantRepository{}
}

// Create creates a new tenant
func (m *MockTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tenant)
	}
	return nil
}

// FindByID finds a tenant by ID
func (m *MockTenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrTenantNotFound
}

// FindByDomain finds a tenant by email domain
func (m *MockTenantRepository) FindByDomain(ctx context.Context, emailDomain string) (*domain.Tenant, error) {
	m.FindByDomainCalls++
	if m.FindByDomainFunc != nil {
		return m.FindByDomainFunc(ctx, emailDomain)
	}
	// Default behavior: not found
	return nil, domain.ErrTenantNotFound
}

// ListActive lists active tenants
func (m *MockTenantRepository) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

// ListAll lists every tenant
func (m *MockTenantRepository) ListAll(ctx context.Context) ([]*domain.Tenant, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

// Update updates an existing tenant
func (m *MockTenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tenant)
	}
	return nil
}

// UpdateSubscription changes the subscription state
func (m *MockTenantRepository) UpdateSubscription(ctx context.Context, id string, status domain.SubscriptionStatus, expiresAt *time.Time) (*domain.Tenant, error) {
	if m.UpdateSubscriptionFunc != nil {
		return m.UpdateSubscriptionFunc(ctx, id, status, expiresAt)
	}
	return &domain.Tenant{ID: id, SubscriptionStatus: status, SubscriptionExpiresAt: expiresAt}, nil
}

// Delete removes a tenant
func (m *MockTenantRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// ExpireSubscriptions expires lapsed subscriptions
func (m *MockTenantRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	if m.ExpireSubscriptionsFunc != nil {
		return m.ExpireSubscriptionsFunc(ctx, now)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.TenantRepository = (*MockTenantRepository)(nil)
