package mocks

import (
	"context"

	"github.com/you/campusauth/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	RequestCodeFunc func(ctx context.Context, email string) (*domain.CodeIssued, error)
	VerifyCodeFunc  func(ctx context.Context, email, code string) error
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// RequestCode issues a code
func (m *MockOTPService) RequestCode(ctx context.Context, email string) (*domain.CodeIssued, error) {
	if m.RequestCodeFunc != nil {
		return m.RequestCodeFunc(ctx, email)
	}
	return &domain.CodeIssued{TenantID: "tenant-1", TenantName: "Test University"}, nil
}

// VerifyCode verifies a code
func (m *MockOTPService) VerifyCode(ctx context.Context, email, code string) error {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, email, code)
	}
	// Default behavior: "123456" is the only valid code
	if code == "123456" {
		return nil
	}
	return domain.ErrInvalidOrExpiredCode
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
