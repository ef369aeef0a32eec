package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/campusauth/domain"
)

// MockCodeStore implements domain.CodeStore interface for testing.
// Without overrides it keeps codes in a map and ignores the ttl.
type MockCodeStore struct {
	PutFunc         func(ctx context.Context, email, code string, ttl time.Duration) error
	TakeIfMatchFunc func(ctx context.Context, email, code string) (bool, error)

	mu    sync.Mutex
	codes map[string]string
	// LastTTL is the ttl passed to the latest Put
	LastTTL time.Duration
}

// NewMockCodeStore creates a new MockCodeStore with default behaviors
func NewMockCodeStore() *MockCodeStore {
	return &MockCodeStore{codes: make(map[string]string)}
}

// Put stores a code
func (m *MockCodeStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, email, code, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	m.LastTTL = ttl
	return nil
}

// TakeIfMatch consumes a code when it matches
func (m *MockCodeStore) TakeIfMatch(ctx context.Context, email, code string) (bool, error) {
	if m.TakeIfMatchFunc != nil {
		return m.TakeIfMatchFunc(ctx, email, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.codes[email]; ok && stored == code {
		delete(m.codes, email)
		return true, nil
	}
	return false, nil
}

// Code returns the stored code for email (test helper)
func (m *MockCodeStore) Code(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[email]
	return code, ok
}

// Len returns the number of stored codes (test helper)
func (m *MockCodeStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes)
}

// Compile-time interface compliance verification
var _ domain.CodeStore = (*MockCodeStore)(nil)
