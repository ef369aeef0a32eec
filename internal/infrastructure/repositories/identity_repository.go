package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/campusauth/domain"
)

// IdentityRepositoryImpl implements domain.IdentityRepository using GORM
type IdentityRepositoryImpl struct {
	db *gorm.DB
}

// DBIdentity is the flattened storage form of every identity variant.
// Columns that do not belong to the row's role stay at their zero value.
type DBIdentity struct {
	ID            string `gorm:"primaryKey;size:36"`
	Email         string `gorm:"uniqueIndex;size:255"`
	Name          string `gorm:"size:255"`
	Role          string `gorm:"index;size:32"`
	TenantID      string `gorm:"index;size:36"`
	PasswordHash  string `gorm:"column:password"`
	Department    string `gorm:"size:255"`
	Year          int
	TrustScore    int
	VerifiedBadge bool   `gorm:"index"`
	ProfileImage  string `gorm:"size:1024"`
	TokenVersion  int    `gorm:"not null;default:0"`
	Revision      int    `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (DBIdentity) TableName() string {
	return "identities"
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *gorm.DB) domain.IdentityRepository {
	return &IdentityRepositoryImpl{db: db}
}

// Create implements domain.IdentityRepository
func (r *IdentityRepositoryImpl) Create(ctx context.Context, identity *domain.Identity) error {
	if identity.Profile == nil {
		return domain.ErrInvalidInput
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	identity.Email = domain.NormalizeEmail(identity.Email)

	row := identityToDB(identity)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdentityExists
		}
		return err
	}
	identity.CreatedAt = row.CreatedAt
	identity.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID implements domain.IdentityRepository
func (r *IdentityRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail implements domain.IdentityRepository
func (r *IdentityRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *IdentityRepositoryImpl) first(ctx context.Context, query string, arg any) (*domain.Identity, error) {
	var row DBIdentity
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, err
	}
	return identityToDomain(&row), nil
}

// ListAll implements domain.IdentityRepository. Newest first.
func (r *IdentityRepositoryImpl) ListAll(ctx context.Context) ([]*domain.Identity, error) {
	var rows []DBIdentity
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return identitiesToDomain(rows), nil
}

// ListByTenant implements domain.IdentityRepository
func (r *IdentityRepositoryImpl) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Identity, error) {
	var rows []DBIdentity
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return identitiesToDomain(rows), nil
}

// CountByTenant implements domain.IdentityRepository. Students with a
// verified badge count as active.
func (r *IdentityRepositoryImpl) CountByTenant(ctx context.Context, tenantID string) (*domain.TenantStats, error) {
	stats := &domain.TenantStats{}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&DBIdentity{}).Where("tenant_id = ?", tenantID)
	}
	if err := base().Where("role = ?", string(domain.RoleStudent)).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := base().Where("role = ? AND verified_badge = ?", string(domain.RoleStudent), true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := base().Where("role = ?", string(domain.RoleUniversityAdmin)).Count(&stats.Admins).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// UpdateProfile applies the update only if the stored revision still equals
// update.ExpectedRevision, bumping the revision in the same statement.
func (r *IdentityRepositoryImpl) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Identity, error) {
	fields := map[string]interface{}{
		"revision": gorm.Expr("revision + 1"),
	}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Department != nil {
		fields["department"] = *update.Department
	}
	if update.Year != nil {
		fields["year"] = *update.Year
	}
	if update.ProfileImage != nil {
		fields["profile_image"] = *update.ProfileImage
	}

	res := r.db.WithContext(ctx).Model(&DBIdentity{}).
		Where("id = ? AND revision = ?", id, update.ExpectedRevision).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrConcurrentUpdate
	}
	return r.FindByID(ctx, id)
}

// SetPasswordHash implements domain.IdentityRepository. The new hash and
// the token version bump land in the same UPDATE.
func (r *IdentityRepositoryImpl) SetPasswordHash(ctx context.Context, id, hash string) error {
	res := r.db.WithContext(ctx).Model(&DBIdentity{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"password":      hash,
			"token_version": gorm.Expr("token_version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

// IncrementTokenVersion implements domain.IdentityRepository
func (r *IdentityRepositoryImpl) IncrementTokenVersion(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&DBIdentity{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

// IncrementAllTokenVersions bumps every identity in a single statement
func (r *IdentityRepositoryImpl) IncrementAllTokenVersions(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&DBIdentity{}).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	return res.RowsAffected, res.Error
}

func identityToDB(i *domain.Identity) *DBIdentity {
	row := &DBIdentity{
		ID:           i.ID,
		Email:        i.Email,
		Name:         i.Name,
		Role:         string(i.Role()),
		TokenVersion: i.TokenVersion,
		Revision:     i.Revision,
	}
	switch p := i.Profile.(type) {
	case domain.StudentProfile:
		row.TenantID = p.TenantID
		row.Department = p.Department
		row.Year = p.Year
		row.TrustScore = p.TrustScore
		row.VerifiedBadge = p.VerifiedBadge
		row.ProfileImage = p.ProfileImage
	case domain.UniversityAdminProfile:
		row.TenantID = p.TenantID
		row.PasswordHash = p.PasswordHash
	case domain.SuperAdminProfile:
		row.PasswordHash = p.PasswordHash
	}
	return row
}

func identityToDomain(row *DBIdentity) *domain.Identity {
	identity := &domain.Identity{
		ID:           row.ID,
		Email:        row.Email,
		Name:         row.Name,
		TokenVersion: row.TokenVersion,
		Revision:     row.Revision,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	switch domain.Role(row.Role) {
	case domain.RoleUniversityAdmin:
		identity.Profile = domain.UniversityAdminProfile{TenantID: row.TenantID, PasswordHash: row.PasswordHash}
	case domain.RoleSuperAdmin:
		identity.Profile = domain.SuperAdminProfile{PasswordHash: row.PasswordHash}
	default:
		identity.Profile = domain.StudentProfile{
			TenantID:      row.TenantID,
			Department:    row.Department,
			Year:          row.Year,
			TrustScore:    row.TrustScore,
			VerifiedBadge: row.VerifiedBadge,
			ProfileImage:  row.ProfileImage,
		}
	}
	return identity
}

func identitiesToDomain(rows []DBIdentity) []*domain.Identity {
	out := make([]*domain.Identity, 0, len(rows))
	for i := range rows {
		out = append(out, identityToDomain(&rows[i]))
	}
	return out
}
