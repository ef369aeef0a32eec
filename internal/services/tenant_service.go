package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/you/campusauth/domain"
)

type TenantConfig struct {
	PublicDomains        []string
	DefaultAdminPassword string
}

// TenantServiceImpl implements domain.TenantService
type TenantServiceImpl struct {
	tenants    domain.TenantRepository
	identities domain.IdentityRepository
	passwords  domain.PasswordService
	audit      domain.AuditLogger
	logger     *zap.Logger
	config     TenantConfig
	public     map[string]struct{}
	now        func() time.Time
}

// NewTenantService creates the tenant directory service
func NewTenantService(
	tenants domain.TenantRepository,
	identities domain.IdentityRepository,
	passwords domain.PasswordService,
	audit domain.AuditLogger,
	logger *zap.Logger,
	config TenantConfig,
) *TenantServiceImpl {
	public := make(map[string]struct{}, len(config.PublicDomains))
	for _, d := range config.PublicDomains {
		public[strings.ToLower(d)] = struct{}{}
	}
	return &TenantServiceImpl{
		tenants:    tenants,
		identities: identities,
		passwords:  passwords,
		audit:      audit,
		logger:     logger.Named("tenants"),
		config:     config,
		public:     public,
		now:        time.Now,
	}
}

// ListActive implements domain.TenantService
func (s *TenantServiceImpl) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	return s.tenants.ListActive(ctx)
}

// ListAll implements domain.TenantService
func (s *TenantServiceImpl) ListAll(ctx context.Context) ([]*domain.Tenant, error) {
	return s.tenants.ListAll(ctx)
}

// Get implements domain.TenantService
func (s *TenantServiceImpl) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.tenants.FindByID(ctx, id)
}

// Create implements domain.TenantService. The tenant and its university
// admin are created together; the tenant is removed again if the admin
// cannot be created.
func (s *TenantServiceImpl) Create(ctx context.Context, req domain.CreateTenantRequest) (*domain.CreatedTenant, error) {
	name := strings.TrimSpace(req.Name)
	tenantDomain := strings.ToLower(strings.TrimSpace(req.Domain))
	if name == "" || tenantDomain == "" || strings.Contains(tenantDomain, "@") {
		return nil, domain.ErrInvalidInput
	}
	if err := s.checkDomain(tenantDomain); err != nil {
		return nil, err
	}

	adminEmail := domain.NormalizeEmail(req.AdminEmail)
	if adminEmail == "" {
		adminEmail = "admin@" + tenantDomain
	}
	if d, err := domain.EmailDomain(adminEmail); err != nil || d != tenantDomain {
		return nil, fmt.Errorf("%w: admin email must belong to %s", domain.ErrInvalidInput, tenantDomain)
	}

	password := req.AdminPassword
	if password == "" {
		password = s.config.DefaultAdminPassword
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tenant := &domain.Tenant{
		Name:               name,
		Domain:             tenantDomain,
		LogoURL:            req.LogoURL,
		Theme:              domain.DefaultTheme,
		AdminEmail:         adminEmail,
		SubscriptionStatus: domain.SubscriptionActive,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}

	admin := &domain.Identity{
		Email:   adminEmail,
		Name:    name + " Admin",
		Profile: domain.UniversityAdminProfile{TenantID: tenant.ID, PasswordHash: hash},
	}
	if err := s.identities.Create(ctx, admin); err != nil {
		if delErr := s.tenants.Delete(ctx, tenant.ID); delErr != nil {
			s.logger.Error("failed to roll back tenant", zap.String("tenant_id", tenant.ID), zap.Error(delErr))
		}
		return nil, err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TenantCreatedEvent).
		WithTenant(tenant.ID).
		WithEmail(adminEmail).
		WithMetadata("domain", tenant.Domain))

	return &domain.CreatedTenant{Tenant: tenant, Admin: admin, AdminPassword: password}, nil
}

// Update implements domain.TenantService
func (s *TenantServiceImpl) Update(ctx context.Context, id string, req domain.UpdateTenantRequest) (*domain.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		tenant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Domain != nil {
		d := strings.ToLower(strings.TrimSpace(*req.Domain))
		if d == "" || strings.Contains(d, "@") {
			return nil, domain.ErrInvalidInput
		}
		if err := s.checkDomain(d); err != nil {
			return nil, err
		}
		tenant.Domain = d
	}
	if req.AdminEmail != nil {
		tenant.AdminEmail = domain.NormalizeEmail(*req.AdminEmail)
	}
	if req.LogoURL != nil {
		tenant.LogoURL = *req.LogoURL
	}

	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return s.tenants.FindByID(ctx, id)
}

// UpdateSubscription implements domain.TenantService
func (s *TenantServiceImpl) UpdateSubscription(ctx context.Context, id string, status domain.SubscriptionStatus, expiresAt *time.Time) (*domain.Tenant, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidTenantState
	}
	tenant, err := s.tenants.UpdateSubscription(ctx, id, status, expiresAt)
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SubscriptionChangeEvent).
		WithTenant(id).
		WithMetadata("status", string(status)))
	return tenant, nil
}

// Delete implements domain.TenantService. A tenant that still has
// identities is never deleted.
func (s *TenantServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.tenants.FindByID(ctx, id); err != nil {
		return err
	}
	members, err := s.identities.ListByTenant(ctx, id)
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return domain.ErrTenantInUse
	}
	if err := s.tenants.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TenantDeletedEvent).WithTenant(id))
	return nil
}

// Stats implements domain.TenantService
func (s *TenantServiceImpl) Stats(ctx context.Context, id string) (*domain.TenantStats, error) {
	if _, err := s.tenants.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.identities.CountByTenant(ctx, id)
}

// Members implements domain.TenantService
func (s *TenantServiceImpl) Members(ctx context.Context, id string) ([]*domain.Identity, error) {
	if _, err := s.tenants.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.identities.ListByTenant(ctx, id)
}

// ExpireSubscriptions implements domain.TenantService
func (s *TenantServiceImpl) ExpireSubscriptions(ctx context.Context) (int64, error) {
	return s.tenants.ExpireSubscriptions(ctx, s.now())
}

// RunSubscriptionSweeper expires lapsed subscriptions once at start and
// then every interval until ctx is cancelled.
func (s *TenantServiceImpl) RunSubscriptionSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := s.ExpireSubscriptions(ctx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			s.logger.Error("subscription sweep failed", zap.Error(err))
		case n > 0:
			s.logger.Info("subscriptions expired", zap.Int64("count", n))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *TenantServiceImpl) checkDomain(d string) error {
	if _, ok := s.public[d]; ok {
		return domain.ErrPublicDomain
	}
	return nil
}
