package mocks

import (
	"context"
	"sync"

	"github.com/you/campusauth/domain"
)

// MockMailer implements domain.Mailer interface for testing
type MockMailer struct {
	SendFunc func(ctx context.Context, msg domain.EmailMessage) error

	mu   sync.Mutex
	Sent []domain.EmailMessage
}

// NewMockMailer creates a new MockMailer with default behaviors
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the message
func (m *MockMailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	// Default behavior: success (no actual email sent in tests)
	return nil
}

// Compile-time interface compliance verification
var _ domain.Mailer = (*MockMailer)(nil)
