package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/you/campusauth/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens look like "token:<identity id>:<token version>".
type MockTokenService struct {
	MintFunc     func(identity *domain.Identity, ttl time.Duration) (string, error)
	ValidateFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Mint issues a token for the identity
func (m *MockTokenService) Mint(identity *domain.Identity, ttl time.Duration) (string, error) {
	if m.MintFunc != nil {
		return m.MintFunc(identity, ttl)
	}
	return fmt.Sprintf("token:%s:%d", identity.ID, identity.TokenVersion), nil
}

// Validate parses a token produced by the default Mint
func (m *MockTokenService) Validate(token string) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "token" {
		return nil, domain.ErrTokenInvalid
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "%d", &version); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	now := time.Now().Unix()
	return &domain.TokenClaims{
		IdentityID:   parts[1],
		TokenVersion: version,
		IssuedAt:     now,
		ExpiresAt:    now + 3600,
	}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
