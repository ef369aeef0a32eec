package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/you/campusauth/domain"
	"github.com/you/campusauth/internal/mocks"
)

// testDeps bundles the mocks behind the services under test
type testDeps struct {
	tenants    *mocks.MockTenantRepository
	identities *mocks.MockIdentityRepository
	store      *mocks.MockCodeStore
	mailer     *mocks.MockMailer
	audit      *mocks.MockAuditLogger
	tokens     *mocks.MockTokenService
	passwords  *mocks.MockPasswordService
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	return &testDeps{
		tenants:    mocks.NewMockTenantRepository(),
		identities: mocks.NewMockIdentityRepository(),
		store:      mocks.NewMockCodeStore(),
		mailer:     mocks.NewMockMailer(),
		audit:      mocks.NewMockAuditLogger(),
		tokens:     mocks.NewMockTokenService(),
		passwords:  mocks.NewMockPasswordService(),
	}
}

func testOTPConfig() OTPConfig {
	return OTPConfig{
		Length:        6,
		TTL:           10 * time.Minute,
		PublicDomains: []string{"gmail.com", "yahoo.com", "outlook.com", "hotmail.com"},
	}
}

func (d *testDeps) otpService() domain.OTPService {
	return NewOTPService(d.tenants, d.store, d.mailer, d.audit, zap.NewNop(), testOTPConfig())
}

func (d *testDeps) authService(otp domain.OTPService) domain.AuthService {
	return NewAuthService(d.identities, d.tenants, otp, d.tokens, d.passwords, d.audit, AuthConfig{
		StudentTTL: 30 * 24 * time.Hour,
		AdminTTL:   7 * 24 * time.Hour,
	})
}

func (d *testDeps) tenantService() *TenantServiceImpl {
	return NewTenantService(d.tenants, d.identities, d.passwords, d.audit, zap.NewNop(), TenantConfig{
		PublicDomains:        testOTPConfig().PublicDomains,
		DefaultAdminPassword: "admin123",
	})
}

// onboard makes the tenant repository resolve lpu.in
func (d *testDeps) onboard(t *testing.T) *domain.Tenant {
	t.Helper()

	tenant := &domain.Tenant{
		ID:                 "tenant-lpu",
		Name:               "Lovely Professional University",
		Domain:             "lpu.in",
		Theme:              domain.DefaultTheme,
		SubscriptionStatus: domain.SubscriptionActive,
	}
	d.tenants.FindByDomainFunc = func(ctx context.Context, emailDomain string) (*domain.Tenant, error) {
		if emailDomain == tenant.Domain {
			return tenant, nil
		}
		return nil, domain.ErrTenantNotFound
	}
	d.tenants.FindByIDFunc = func(ctx context.Context, id string) (*domain.Tenant, error) {
		if id == tenant.ID {
			return tenant, nil
		}
		return nil, domain.ErrTenantNotFound
	}
	return tenant
}

// memIdentities backs the identity mock with a map keyed by id
type memIdentities struct {
	byID map[string]*domain.Identity
	seq  int
}

func (d *testDeps) useMemIdentities(t *testing.T) *memIdentities {
	t.Helper()

	mem := &memIdentities{byID: make(map[string]*domain.Identity)}
	d.identities.CreateFunc = func(ctx context.Context, identity *domain.Identity) error {
		for _, existing := range mem.byID {
			if existing.Email == identity.Email {
				return domain.ErrIdentityExists
			}
		}
		mem.seq++
		identity.ID = fmt.Sprintf("id-%d", mem.seq)
		copied := *identity
		mem.byID[identity.ID] = &copied
		return nil
	}
	d.identities.FindByIDFunc = func(ctx context.Context, id string) (*domain.Identity, error) {
		if identity, ok := mem.byID[id]; ok {
			copied := *identity
			return &copied, nil
		}
		return nil, domain.ErrIdentityNotFound
	}
	d.identities.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Identity, error) {
		for _, identity := range mem.byID {
			if identity.Email == email {
				copied := *identity
				return &copied, nil
			}
		}
		return nil, domain.ErrIdentityNotFound
	}
	d.identities.IncrementTokenVersionFunc = func(ctx context.Context, id string) error {
		identity, ok := mem.byID[id]
		if !ok {
			return domain.ErrIdentityNotFound
		}
		identity.TokenVersion++
		return nil
	}
	d.identities.IncrementAllTokenVersionsFunc = func(ctx context.Context) (int64, error) {
		for _, identity := range mem.byID {
			identity.TokenVersion++
		}
		return int64(len(mem.byID)), nil
	}
	d.identities.SetPasswordHashFunc = func(ctx context.Context, id, hash string) error {
		identity, ok := mem.byID[id]
		if !ok {
			return domain.ErrIdentityNotFound
		}
		identity.Profile = identity.WithPasswordHash(hash)
		identity.TokenVersion++
		return nil
	}
	return mem
}

func (m *memIdentities) add(identity *domain.Identity) *domain.Identity {
	m.byID[identity.ID] = identity
	return identity
}

func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
