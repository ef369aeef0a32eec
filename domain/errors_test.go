package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{name: "ErrPublicDomain", err: ErrPublicDomain, expectedMsg: "public email domains not allowed"},
		{name: "ErrTenantNotOnboarded", err: ErrTenantNotOnboarded, expectedMsg: "university not onboarded"},
		{name: "ErrTenantNotFound", err: ErrTenantNotFound, expectedMsg: "university not found"},
		{name: "ErrInvalidOrExpiredCode", err: ErrInvalidOrExpiredCode, expectedMsg: "invalid or expired code"},
		{name: "ErrIdentityNotFound", err: ErrIdentityNotFound, expectedMsg: "identity not found"},
		{name: "ErrTokenRequired", err: ErrTokenRequired, expectedMsg: "token required"},
		{name: "ErrTokenInvalid", err: ErrTokenInvalid, expectedMsg: "invalid or expired token"},
		{name: "ErrTokenInvalidated", err: ErrTokenInvalidated, expectedMsg: "token invalidated"},
		{name: "ErrTenantContextRequired", err: ErrTenantContextRequired, expectedMsg: "tenant context required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expectedMsg {
				t.Errorf("expected error message %q, got %q", tt.expectedMsg, tt.err.Error())
			}

			// Test that these are different errors
			for _, other := range tests {
				if other.name != tt.name && errors.Is(tt.err, other.err) {
					t.Errorf("error %s should not be equal to %s", tt.name, other.name)
				}
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	wrapped := fmt.Errorf("verify code for %s: %w", "alice@lpu.in", ErrInvalidOrExpiredCode)
	if !errors.Is(wrapped, ErrInvalidOrExpiredCode) {
		t.Error("wrapped error should match its sentinel")
	}
	if errors.Is(wrapped, ErrTokenInvalid) {
		t.Error("wrapped error should not match an unrelated sentinel")
	}
}
