package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/campusauth/domain"
)

// TenantRepositoryImpl implements domain.TenantRepository using GORM
type TenantRepositoryImpl struct {
	db *gorm.DB
}

// DBTenant represents the database model for a university tenant
type DBTenant struct {
	ID                    string `gorm:"primaryKey;size:36"`
	Name                  string `gorm:"size:255;index"`
	Domain                string `gorm:"uniqueIndex;size:255"`
	LogoURL               string `gorm:"size:1024"`
	PrimaryColor          string `gorm:"size:16"`
	AccentColor           string `gorm:"size:16"`
	AdminEmail            string `gorm:"size:255"`
	SubscriptionStatus    string `gorm:"index;size:16"`
	SubscriptionExpiresAt *time.Time
	CreatedAt             time.Time `gorm:"index"`
	UpdatedAt             time.Time
}

// TableName returns the table name for GORM
func (DBTenant) TableName() string {
	return "tenants"
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) domain.TenantRepository {
	return &TenantRepositoryImpl{db: db}
}

// Create implements domain.TenantRepository
func (r *TenantRepositoryImpl) Create(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	if tenant.SubscriptionStatus == "" {
		tenant.SubscriptionStatus = domain.SubscriptionActive
	}
	if tenant.Theme == (domain.Theme{}) {
		tenant.Theme = domain.DefaultTheme
	}
	tenant.Domain = strings.ToLower(tenant.Domain)

	row := tenantToDB(tenant)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTenantDomainTaken
		}
		return err
	}
	tenant.CreatedAt = row.CreatedAt
	tenant.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID implements domain.TenantRepository
func (r *TenantRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByDomain implements domain.TenantRepository
func (r *TenantRepositoryImpl) FindByDomain(ctx context.Context, emailDomain string) (*domain.Tenant, error) {
	return r.first(ctx, "domain = ?", strings.ToLower(emailDomain))
}

func (r *TenantRepositoryImpl) first(ctx context.Context, query string, arg any) (*domain.Tenant, error) {
	var row DBTenant
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return tenantToDomain(&row), nil
}

// ListActive implements domain.TenantRepository. Sorted by name.
func (r *TenantRepositoryImpl) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	var rows []DBTenant
	err := r.db.WithContext(ctx).
		Where("subscription_status = ?", string(domain.SubscriptionActive)).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return tenantsToDomain(rows), nil
}

// ListAll implements domain.TenantRepository. Newest first.
func (r *TenantRepositoryImpl) ListAll(ctx context.Context) ([]*domain.Tenant, error) {
	var rows []DBTenant
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return tenantsToDomain(rows), nil
}

// Update implements domain.TenantRepository. Subscription fields are not touched.
func (r *TenantRepositoryImpl) Update(ctx context.Context, tenant *domain.Tenant) error {
	tenant.Domain = strings.ToLower(tenant.Domain)
	row := tenantToDB(tenant)
	res := r.db.WithContext(ctx).Model(&DBTenant{ID: tenant.ID}).
		Select("name", "domain", "logo_url", "primary_color", "accent_color", "admin_email").
		Updates(row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.ErrTenantDomainTaken
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// UpdateSubscription implements domain.TenantRepository
func (r *TenantRepositoryImpl) UpdateSubscription(ctx context.Context, id string, status domain.SubscriptionStatus, expiresAt *time.Time) (*domain.Tenant, error) {
	res := r.db.WithContext(ctx).Model(&DBTenant{ID: id}).
		Select("subscription_status", "subscription_expires_at").
		Updates(&DBTenant{SubscriptionStatus: string(status), SubscriptionExpiresAt: expiresAt})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrTenantNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete implements domain.TenantRepository
func (r *TenantRepositoryImpl) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DBTenant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// ExpireSubscriptions flips active tenants whose expiry has passed to inactive
func (r *TenantRepositoryImpl) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DBTenant{}).
		Where("subscription_status = ? AND subscription_expires_at IS NOT NULL AND subscription_expires_at <= ?",
			string(domain.SubscriptionActive), now).
		Update("subscription_status", string(domain.SubscriptionInactive))
	return res.RowsAffected, res.Error
}

func tenantToDB(t *domain.Tenant) *DBTenant {
	return &DBTenant{
		ID:                    t.ID,
		Name:                  t.Name,
		Domain:                t.Domain,
		LogoURL:               t.LogoURL,
		PrimaryColor:          t.Theme.PrimaryColor,
		AccentColor:           t.Theme.AccentColor,
		AdminEmail:            t.AdminEmail,
		SubscriptionStatus:    string(t.SubscriptionStatus),
		SubscriptionExpiresAt: t.SubscriptionExpiresAt,
	}
}

func tenantToDomain(row *DBTenant) *domain.Tenant {
	return &domain.Tenant{
		ID:                    row.ID,
		Name:                  row.Name,
		Domain:                row.Domain,
		LogoURL:               row.LogoURL,
		Theme:                 domain.Theme{PrimaryColor: row.PrimaryColor, AccentColor: row.AccentColor},
		AdminEmail:            row.AdminEmail,
		SubscriptionStatus:    domain.SubscriptionStatus(row.SubscriptionStatus),
		SubscriptionExpiresAt: row.SubscriptionExpiresAt,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}

func tenantsToDomain(rows []DBTenant) []*domain.Tenant {
	out := make([]*domain.Tenant, 0, len(rows))
	for i := range rows {
		out = append(out, tenantToDomain(&rows[i]))
	}
	return out
}
