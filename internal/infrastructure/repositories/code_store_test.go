package repositories

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/campusauth/domain"
)

const testMaxAttempts = 3

func (s *MemoryCodeStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// codeStoreContract runs the behaviour every domain.CodeStore must share
func codeStoreContract(t *testing.T, store domain.CodeStore) {
	ctx := context.Background()

	t.Run("match consumes the code", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "alice@lpu.in", "123456", 10*time.Minute))

		ok, err := store.TakeIfMatch(ctx, "alice@lpu.in", "123456")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.TakeIfMatch(ctx, "alice@lpu.in", "123456")
		require.NoError(t, err)
		assert.False(t, ok, "second use of the same code must fail")
	})

	t.Run("mismatch keeps the code", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "bob@lpu.in", "111111", 10*time.Minute))

		ok, err := store.TakeIfMatch(ctx, "bob@lpu.in", "222222")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.TakeIfMatch(ctx, "bob@lpu.in", "111111")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("too many wrong guesses burn the code", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "frank@lpu.in", "123456", 10*time.Minute))

		for i := 0; i < testMaxAttempts; i++ {
			ok, err := store.TakeIfMatch(ctx, "frank@lpu.in", fmt.Sprintf("%06d", i))
			require.NoError(t, err)
			assert.False(t, ok)
		}

		ok, err := store.TakeIfMatch(ctx, "frank@lpu.in", "123456")
		require.NoError(t, err)
		assert.False(t, ok, "the right code is refused once the attempts are spent")
	})

	t.Run("a new code resets the attempts", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "grace@lpu.in", "123456", 10*time.Minute))
		for i := 0; i < testMaxAttempts-1; i++ {
			ok, err := store.TakeIfMatch(ctx, "grace@lpu.in", "000000")
			require.NoError(t, err)
			assert.False(t, ok)
		}

		require.NoError(t, store.Put(ctx, "grace@lpu.in", "654321", 10*time.Minute))
		ok, err := store.TakeIfMatch(ctx, "grace@lpu.in", "000000")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.TakeIfMatch(ctx, "grace@lpu.in", "654321")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("never issued", func(t *testing.T) {
		ok, err := store.TakeIfMatch(ctx, "nobody@lpu.in", "000000")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("new code replaces the old one", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "carol@lpu.in", "111111", 10*time.Minute))
		require.NoError(t, store.Put(ctx, "carol@lpu.in", "999999", 10*time.Minute))

		ok, err := store.TakeIfMatch(ctx, "carol@lpu.in", "111111")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.TakeIfMatch(ctx, "carol@lpu.in", "999999")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("email case does not matter", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "Dave@LPU.in", "424242", 10*time.Minute))
		ok, err := store.TakeIfMatch(ctx, "dave@lpu.in", "424242")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("concurrent verifies consume once", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "erin@lpu.in", "777777", 10*time.Minute))

		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := store.TakeIfMatch(ctx, "erin@lpu.in", "777777")
				assert.NoError(t, err)
				if ok {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins)
	})
}

func TestRedisCodeStore(t *testing.T) {
	_, client := setupTestRedis(t)
	codeStoreContract(t, NewRedisCodeStore(client, testMaxAttempts))
}

func TestRedisCodeStore_Expiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisCodeStore(client, testMaxAttempts)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "alice@lpu.in", "123456", 10*time.Minute))
	assert.Equal(t, 10*time.Minute, mr.TTL("otp:alice@lpu.in"))

	mr.FastForward(10*time.Minute + time.Second)

	ok, err := store.TakeIfMatch(ctx, "alice@lpu.in", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCodeStore_AttemptCounterFollowsCode(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisCodeStore(client, testMaxAttempts)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "alice@lpu.in", "123456", 10*time.Minute))
	ok, err := store.TakeIfMatch(ctx, "alice@lpu.in", "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := mr.Get("otp:att:alice@lpu.in")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.Equal(t, 10*time.Minute, mr.TTL("otp:att:alice@lpu.in"))

	ok, err = store.TakeIfMatch(ctx, "alice@lpu.in", "123456")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists("otp:att:alice@lpu.in"), "a successful verify clears the counter")
}

func TestRedisCodeStore_BackendDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisCodeStore(client, testMaxAttempts)
	mr.Close()

	assert.Error(t, store.Put(context.Background(), "alice@lpu.in", "1", time.Minute))
	_, err := store.TakeIfMatch(context.Background(), "alice@lpu.in", "1")
	assert.Error(t, err)
}

func TestMemoryCodeStore(t *testing.T) {
	codeStoreContract(t, NewMemoryCodeStore(testMaxAttempts))
}

func TestMemoryCodeStore_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryCodeStore(testMaxAttempts).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "alice@lpu.in", "123456", 10*time.Minute))

	now = now.Add(10 * time.Minute)
	ok, err := store.TakeIfMatch(ctx, "alice@lpu.in", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.size())
}

func TestMemoryCodeStore_TimerEvicts(t *testing.T) {
	store := NewMemoryCodeStore(testMaxAttempts)
	require.NoError(t, store.Put(context.Background(), "alice@lpu.in", "123456", 20*time.Millisecond))
	assert.Equal(t, 1, store.size())

	assert.Eventually(t, func() bool { return store.size() == 0 }, time.Second, 5*time.Millisecond)
}
