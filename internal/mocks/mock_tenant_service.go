package mocks

import (
	"context"
	"time"

	"github.com/you/campusauth/domain"
)

// MockTenantService implements domain.TenantService interface for testing
type MockTenantService struct {
	ListActiveFunc          func(ctx context.Context) ([]*domain.Tenant, error)
	ListAllFunc             func(ctx context.Context) ([]*domain.Tenant, error)
	GetFunc                 func(ctx context.Context, id string) (*domain.Tenant, error)
	CreateFunc              func(ctx context.Context, req domain.CreateTenantRequest) (*domain.CreatedTenant, error)
	UpdateFunc              func(ctx context.Context, id string, req domain.UpdateTenantRequest) (*domain.Tenant, error)
	UpdateSubscriptionFunc  func(ctx context.Context, id string, status domain.SubscriptionStatus, expiresAt *time.Time) (*domain.Tenant, error)
	DeleteFunc              func(ctx context.Context, id string) error
	StatsFunc               func(ctx context.Context, id string) (*domain.TenantStats, error)
	MembersFunc             func(ctx context.Context, id string) ([]*domain.Identity, error)
	ExpireSubscriptionsFunc func(ctx context.Context) (int64, error)
}

// NewMockTenantService creates a new MockTenantService with default behaviors
func NewMockTenantService() *MockTenantService {
	return &MockTenantService{}
}

func (m *MockTenantService) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *MockTenantService) ListAll(ctx context.Context) ([]*domain.Tenant, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockTenantService) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrTenantNotFound
}

func (m *MockTenantService) Create(ctx context.Context, req domain.CreateTenantRequest) (*domain.CreatedTenant, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, domain.ErrInvalidInput
}

func (m *MockTenantService) Update(ctx context.Context, id string, req domain.UpdateTenantRequest) (*domain.Tenant, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, domain.ErrTenantNotFound
}

func (m *MockTenantService) UpdateSubscription(ctx context.Context, id string, status domain.SubscriptionStatus, expiresAt *time.Time) (*domain.Tenant, error) {
	if m.UpdateSubscriptionFunc != nil {
		return m.UpdateSubscriptionFunc(ctx, id, status, expiresAt)
	}
	return nil, domain.ErrTenantNotFound
}

func (m *MockTenantService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTenantService) Stats(ctx context.Context, id string) (*domain.TenantStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, id)
	}
	return &domain.TenantStats{}, nil
}

func (m *MockTenantService) Members(ctx context.Context, id string) ([]*domain.Identity, error) {
	if m.MembersFunc != nil {
		return m.MembersFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTenantService) ExpireSubscriptions(ctx context.Context) (int64, error) {
	if m.ExpireSubscriptionsFunc != nil {
		return m.ExpireSubscriptionsFunc(ctx)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.TenantService = (*MockTenantService)(nil)
