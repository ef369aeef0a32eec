package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/campusauth/domain"
)

// takeIfMatch deletes the code only when it still holds the submitted value,
// so a code can be consumed at most once even under concurrent verifies.
// A wrong guess bumps the attempt counter, which shares the code's expiry;
// the code and counter are dropped together once ARGV[2] guesses fail.
var takeIfMatch = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
	return 0
end
if stored == ARGV[1] then
	redis.call("DEL", KEYS[1], KEYS[2])
	return 1
end
local failures = redis.call("INCR", KEYS[2])
if failures == 1 then
	local ttl = redis.call("PTTL", KEYS[1])
	if ttl > 0 then
		redis.call("PEXPIRE", KEYS[2], ttl)
	end
end
if failures >= tonumber(ARGV[2]) then
	redis.call("DEL", KEYS[1], KEYS[2])
end
return 0
`)

// RedisCodeStore implements domain.CodeStore with native key expiry
type RedisCodeStore struct {
	client      *redis.Client
	prefix      string
	attPrefix   string
	maxAttempts int
}

// NewRedisCodeStore creates a code store on top of an existing client.
// Values of maxAttempts below 1 use DefaultMaxAttempts.
func NewRedisCodeStore(client *redis.Client, maxAttempts int) domain.CodeStore {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RedisCodeStore{
		client:      client,
		prefix:      "otp:",
		attPrefix:   "otp:att:",
		maxAttempts: maxAttempts,
	}
}

// Put implements domain.CodeStore. A later Put for the same email replaces
// the earlier code, restarts its lifetime and clears its failed attempts.
func (s *RedisCodeStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(email), code, ttl)
		pipe.Del(ctx, s.attemptsKey(email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	return nil
}

// TakeIfMatch implements domain.CodeStore
func (s *RedisCodeStore) TakeIfMatch(ctx context.Context, email, code string) (bool, error) {
	keys := []string{s.key(email), s.attemptsKey(email)}
	n, err := takeIfMatch.Run(ctx, s.client, keys, code, s.maxAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume code: %w", err)
	}
	return n == 1, nil
}

func (s *RedisCodeStore) key(email string) string {
	return s.prefix + domain.NormalizeEmail(email)
}

func (s *RedisCodeStore) attemptsKey(email string) string {
	return s.attPrefix + domain.NormalizeEmail(email)
}
