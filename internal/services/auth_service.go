package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/you/campusauth/domain"
)

// Defaults applied to students created on first login
const (
	defaultTrustScore    = 50
	defaultVerifiedBadge = true
)

type AuthConfig struct {
	StudentTTL time.Duration
	AdminTTL   time.Duration
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	identities domain.IdentityRepository
	tenants    domain.TenantRepository
	otp        domain.OTPService
	tokens     domain.TokenService
	passwords  domain.PasswordService
	audit      domain.AuditLogger
	config     AuthConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	identities domain.IdentityRepository,
	tenants domain.TenantRepository,
	otp domain.OTPService,
	tokens domain.TokenService,
	passwords domain.PasswordService,
	audit domain.AuditLogger,
	config AuthConfig,
) domain.AuthService {
	return &AuthServiceImpl{
		identities: identities,
		tenants:    tenants,
		otp:        otp,
		tokens:     tokens,
		passwords:  passwords,
		audit:      audit,
		config:     config,
	}
}

// VerifyAndLogin implements domain.AuthService. The student identity is
// created on first successful verification and reused afterwards.
func (s *AuthServiceImpl) VerifyAndLogin(ctx context.Context, email, code string, fields domain.ProfileFields) (*domain.LoginResult, error) {
	email = domain.NormalizeEmail(email)

	if err := s.otp.VerifyCode(ctx, email, code); err != nil {
		return nil, err
	}

	emailDomain, err := domain.EmailDomain(email)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByDomain(ctx, emailDomain)
	if err != nil {
		return nil, err
	}

	identity, err := s.findOrCreateStudent(ctx, email, tenant, fields)
	if err != nil {
		return nil, err
	}
	if _, ok := identity.Student(); !ok {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent).
			WithIdentity(identity).
			WithError(domain.ErrNotStudent))
		return nil, domain.ErrNotStudent
	}

	token, err := s.tokens.Mint(identity, s.config.StudentTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent).
		WithIdentity(identity).
		WithMetadata("method", "otp"))

	return &domain.LoginResult{Identity: identity, Tenant: tenant, Token: token}, nil
}

func (s *AuthServiceImpl) findOrCreateStudent(ctx context.Context, email string, tenant *domain.Tenant, fields domain.ProfileFields) (*domain.Identity, error) {
	identity, err := s.identities.FindByEmail(ctx, email)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, err
	}

	name := fields.Name
	if name == "" {
		name = domain.LocalPart(email)
	}
	identity = &domain.Identity{
		Email:        email,
		Name:         name,
		TokenVersion: 0,
		Profile: domain.StudentProfile{
			TenantID:      tenant.ID,
			Department:    fields.Department,
			Year:          fields.Year,
			TrustScore:    defaultTrustScore,
			VerifiedBadge: defaultVerifiedBadge,
			ProfileImage:  fields.ProfileImage,
		},
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		// a concurrent first login for the same email won the insert
		if errors.Is(err, domain.ErrIdentityExists) {
			return s.identities.FindByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.IdentityCreatedEvent).WithIdentity(identity))
	return identity, nil
}

// AdminLogin implements domain.AuthService
func (s *AuthServiceImpl) AdminLogin(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	email = domain.NormalizeEmail(email)

	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			s.loginFailed(ctx, email, nil)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !identity.Role().IsAdmin() || !s.passwords.Verify(identity.PasswordHash(), password) {
		s.loginFailed(ctx, email, identity)
		return nil, domain.ErrInvalidCredentials
	}

	var tenant *domain.Tenant
	if tenantID := identity.TenantID(); tenantID != "" {
		tenant, err = s.tenants.FindByID(ctx, tenantID)
		if err != nil && !errors.Is(err, domain.ErrTenantNotFound) {
			return nil, err
		}
	}

	token, err := s.tokens.Mint(identity, s.config.AdminTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent).
		WithIdentity(identity).
		WithMetadata("method", "password"))

	return &domain.LoginResult{Identity: identity, Tenant: tenant, Token: token}, nil
}

func (s *AuthServiceImpl) loginFailed(ctx context.Context, email string, identity *domain.Identity) {
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent).
		WithEmail(email).
		WithIdentity(identity).
		WithError(domain.ErrInvalidCredentials))
}

// Authenticate implements domain.AuthService. A token is accepted only if
// its signature and expiry check out and its embedded token version still
// equals the identity's current one.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenRequired
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	identity, err := s.identities.FindByID(ctx, claims.IdentityID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, err
	}

	if identity.TokenVersion != claims.TokenVersion {
		return nil, domain.ErrTokenInvalidated
	}

	return &domain.AuthContext{
		Identity: identity,
		TenantID: identity.TenantID(),
		Claims:   claims,
	}, nil
}

// Me implements domain.AuthService
func (s *AuthServiceImpl) Me(ctx context.Context, identityID string) (*domain.Identity, *domain.Tenant, error) {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, nil, err
	}
	tenantID := identity.TenantID()
	if tenantID == "" {
		return identity, nil, nil
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return identity, nil, nil
		}
		return nil, nil, err
	}
	return identity, tenant, nil
}

// Logout implements domain.AuthService. Every token issued to the
// identity so far stops validating.
func (s *AuthServiceImpl) Logout(ctx context.Context, identityID string) error {
	if err := s.identities.IncrementTokenVersion(ctx, identityID); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLogoutEvent).
		WithMetadata("identity_id", identityID))
	return nil
}

// LogoutAll implements domain.AuthService
func (s *AuthServiceImpl) LogoutAll(ctx context.Context) (int64, error) {
	n, err := s.identities.IncrementAllTokenVersions(ctx)
	if err != nil {
		return 0, err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.LogoutAllEvent).
		WithMetadata("identities", n))
	return n, nil
}

// UpdateProfile implements domain.AuthService. Student-only fields are
// refused for admin identities.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, identityID string, update domain.ProfileUpdate) (*domain.Identity, error) {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if _, ok := identity.Student(); !ok {
		if update.Department != nil || update.Year != nil || update.ProfileImage != nil {
			return nil, domain.ErrNotStudent
		}
	}
	if update.Name != nil && *update.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if update.Year != nil && (*update.Year < 0 || *update.Year > 10) {
		return nil, domain.ErrInvalidInput
	}
	return s.identities.UpdateProfile(ctx, identityID, update)
}

// ChangePassword implements domain.AuthService. The token version is
// bumped so sessions opened with the old password end.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, identityID, current, next string) error {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return err
	}
	if !identity.Role().IsAdmin() {
		return domain.ErrNotAdmin
	}
	if len(next) < 6 {
		return domain.ErrInvalidInput
	}
	if !s.passwords.Verify(identity.PasswordHash(), current) {
		return domain.ErrIncorrectPassword
	}

	hash, err := s.passwords.Hash(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.identities.SetPasswordHash(ctx, identityID, hash); err != nil {
		return err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PasswordChangedEvent).WithIdentity(identity))
	return nil
}
