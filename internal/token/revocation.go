package token

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore is a set of invalidated tokens with automatic expiry.
// The TTL must be at least as long as the longest-lived token the issuer
// hands out, so no live token is ever silently forgotten.
type RevocationStore interface {
	// Revoke adds the token to the set. Revoking an already-revoked token is
	// treated as success so a repeated logout never fails.
	Revoke(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

const revokedKeyPrefix = "auth:revoked:"

// redisRevocationStore is the shared-store implementation, safe across
// horizontally scaled instances. Redis expires entries natively.
type redisRevocationStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisRevocationStore creates a Redis-backed revocation store.
func NewRedisRevocationStore(client *redis.Client, ttl time.Duration, log *slog.Logger) RevocationStore {
	return &redisRevocationStore{client: client, ttl: ttl, log: log}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, token string) error {
	added, err := s.client.SetNX(ctx, revokedKeyPrefix+token, 1, s.ttl).Result()
	if err != nil {
		return err
	}
	if !added {
		s.log.Warn("token already revoked")
	}
	return nil
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// memoryRevocationStore is a process-local fallback for single-instance
// deployments and tests. Expired entries are swept lazily on access.
type memoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryRevocationStore creates an in-memory revocation store.
func NewMemoryRevocationStore(ttl time.Duration) RevocationStore {
	return &memoryRevocationStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *memoryRevocationStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[token] = s.now()
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	_, ok := s.entries[token]
	return ok, nil
}

func (s *memoryRevocationStore) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for tok, at := range s.entries {
		if at.Before(cutoff) {
			delete(s.entries, tok)
		}
	}
}
