package repositories

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/you/campusauth/domain"
)

// DefaultMaxAttempts is the number of wrong guesses a code survives
const DefaultMaxAttempts = 5

type memoryCode struct {
	code      string
	expiresAt time.Time
	failures  int
	timer     *time.Timer
}

// MemoryCodeStore implements domain.CodeStore in process memory. Each entry
// is removed by a timer when it expires; reads also check the deadline.
// Codes do not survive a restart and are not shared between instances.
type MemoryCodeStore struct {
	mu          sync.Mutex
	codes       map[string]*memoryCode
	maxAttempts int
	now         func() time.Time
}

// NewMemoryCodeStore creates an empty in-memory code store. A code is
// dropped after maxAttempts wrong guesses; values below 1 use
// DefaultMaxAttempts.
func NewMemoryCodeStore(maxAttempts int) *MemoryCodeStore {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &MemoryCodeStore{
		codes:       make(map[string]*memoryCode),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for expiry checks
func (s *MemoryCodeStore) WithClock(now func() time.Time) *MemoryCodeStore {
	s.now = now
	return s
}

// Put implements domain.CodeStore
func (s *MemoryCodeStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	key := domain.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.codes[key]; ok {
		prev.timer.Stop()
	}
	entry := &memoryCode{code: code, expiresAt: s.now().Add(ttl)}
	entry.timer = time.AfterFunc(ttl, func() { s.evict(key, entry) })
	s.codes[key] = entry
	return nil
}

// TakeIfMatch implements domain.CodeStore
func (s *MemoryCodeStore) TakeIfMatch(_ context.Context, email, code string) (bool, error) {
	key := domain.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		entry.timer.Stop()
		delete(s.codes, key)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) != 1 {
		entry.failures++
		if entry.failures >= s.maxAttempts {
			entry.timer.Stop()
			delete(s.codes, key)
		}
		return false, nil
	}
	entry.timer.Stop()
	delete(s.codes, key)
	return true, nil
}

// evict removes entry unless it has already been replaced by a newer Put
func (s *MemoryCodeStore) evict(key string, entry *memoryCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes[key] == entry {
		delete(s.codes, key)
	}
}
