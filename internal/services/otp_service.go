package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/you/campusauth/domain"
	"github.com/you/campusauth/internal/infrastructure/notifications"
)

// OTPServiceImpl implements domain.OTPService on top of a domain.CodeStore
type OTPServiceImpl struct {
	tenants domain.TenantRepository
	store   domain.CodeStore
	mailer  domain.Mailer
	audit   domain.AuditLogger
	logger  *zap.Logger
	config  OTPConfig
	public  map[string]struct{}
}

type OTPConfig struct {
	Length        int
	TTL           time.Duration
	PublicDomains []string
}

// NewOTPService creates a new one-time code service
func NewOTPService(
	tenants domain.TenantRepository,
	store domain.CodeStore,
	mailer domain.Mailer,
	audit domain.AuditLogger,
	logger *zap.Logger,
	config OTPConfig,
) domain.OTPService {
	public := make(map[string]struct{}, len(config.PublicDomains))
	for _, d := range config.PublicDomains {
		public[domain.NormalizeEmail(d)] = struct{}{}
	}
	return &OTPServiceImpl{
		tenants: tenants,
		store:   store,
		mailer:  mailer,
		audit:   audit,
		logger:  logger.Named("otp"),
		config:  config,
		public:  public,
	}
}

// RequestCode implements domain.OTPService. Public mail domains are
// rejected before any tenant lookup; a new code replaces any earlier one.
func (s *OTPServiceImpl) RequestCode(ctx context.Context, email string) (*domain.CodeIssued, error) {
	email = domain.NormalizeEmail(email)
	emailDomain, err := domain.EmailDomain(email)
	if err != nil {
		return nil, err
	}

	if _, ok := s.public[emailDomain]; ok {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPRejectedEvent).
			WithEmail(email).
			WithError(domain.ErrPublicDomain))
		return nil, domain.ErrPublicDomain
	}

	tenant, err := s.tenants.FindByDomain(ctx, emailDomain)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPRejectedEvent).
				WithEmail(email).
				WithError(domain.ErrTenantNotOnboarded))
			return nil, domain.ErrTenantNotOnboarded
		}
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.store.Put(ctx, email, code, s.config.TTL); err != nil {
		return nil, err
	}

	s.deliver(ctx, email, code, tenant)

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPRequestEvent).
		WithEmail(email).
		WithTenant(tenant.ID))

	return &domain.CodeIssued{TenantID: tenant.ID, TenantName: tenant.Name}, nil
}

// deliver sends the code by email. Failures are logged and otherwise
// ignored: the stored code stays valid.
func (s *OTPServiceImpl) deliver(ctx context.Context, email, code string, tenant *domain.Tenant) {
	msg, err := notifications.OTPEmail(email, code, tenant, int(s.config.TTL.Minutes()))
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err == nil {
		return
	}

	s.logger.Warn("otp email delivery failed",
		zap.String("email", email),
		zap.String("tenant", tenant.Name),
		zap.Error(err),
	)
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPDeliveryFailedEvent).
		WithEmail(email).
		WithTenant(tenant.ID).
		WithError(err))
}

// VerifyCode implements domain.OTPService. Wrong, expired and never
// issued codes all report domain.ErrInvalidOrExpiredCode.
func (s *OTPServiceImpl) VerifyCode(ctx context.Context, email, code string) error {
	email = domain.NormalizeEmail(email)
	if email == "" || code == "" {
		return domain.ErrInvalidOrExpiredCode
	}

	ok, err := s.store.TakeIfMatch(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPFailureEvent).
			WithEmail(email).
			WithError(domain.ErrInvalidOrExpiredCode))
		return domain.ErrInvalidOrExpiredCode
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPVerifyEvent).WithEmail(email))
	return nil
}

// generateSecureCode draws each digit uniformly from crypto/rand
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)
	for i := range digits {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}
