package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimStore prevents a single external OAuth authorization code from being
// exchanged twice while it is tracked. Codes are single-use upstream; a
// duplicate exchange attempt would fail at the provider anyway and can
// invalidate the legitimate in-flight exchange.
type ClaimStore interface {
	// TryClaim records the code and returns true, or returns false if the code
	// is already being processed.
	TryClaim(ctx context.Context, code string) (bool, error)
}

const claimKeyPrefix = "oauth:code:"

// redisClaimStore is the shared-store implementation; SET NX with expiry gives
// claim-once semantics across all server instances.
type redisClaimStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClaimStore creates a Redis-backed claim store.
func NewRedisClaimStore(client *redis.Client, ttl time.Duration) ClaimStore {
	return &redisClaimStore{client: client, ttl: ttl}
}

func (s *redisClaimStore) TryClaim(ctx context.Context, code string) (bool, error) {
	return s.client.SetNX(ctx, claimKeyPrefix+code, 1, s.ttl).Result()
}

// memoryClaimStore is a process-local claim store. Entries older than the TTL
// are swept lazily under the same mutex that guards the claim, which is never
// held across I/O.
type memoryClaimStore struct {
	mu    sync.Mutex
	codes map[string]time.Time
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryClaimStore creates an in-memory claim store.
func NewMemoryClaimStore(ttl time.Duration) ClaimStore {
	return &memoryClaimStore{
		codes: make(map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *memoryClaimStore) TryClaim(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.ttl)
	for c, at := range s.codes {
		if at.Before(cutoff) {
			delete(s.codes, c)
		}
	}

	if _, exists := s.codes[code]; exists {
		return false, nil
	}
	s.codes[code] = now
	return true, nil
}
