package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter bounds the number of attempts per client key within a sliding window.
// It guards the credential endpoints (login, signup) against brute force.
type Limiter interface {
	// Allow reports whether the attempt is permitted. Denied attempts are not
	// recorded, so a client hammering a full window does not extend its lockout.
	Allow(ctx context.Context, key string) (bool, error)
}

const rateKeyPrefix = "auth:ratelimit:"

// redisLimiter keeps per-key attempt timestamps in a Redis sorted set, making
// the window shared across all server instances.
type redisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed sliding window limiter.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) Limiter {
	return &redisLimiter{client: client, limit: limit, window: window}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	rkey := rateKeyPrefix + key
	cutoff := now.Add(-l.window).UnixNano()

	if err := l.client.ZRemRangeByScore(ctx, rkey, "-inf", fmt.Sprintf("%d", cutoff)).Err(); err != nil {
		return false, err
	}
	count, err := l.client.ZCard(ctx, rkey).Result()
	if err != nil {
		return false, err
	}
	if count >= int64(l.limit) {
		return false, nil
	}

	pipe := l.client.TxPipeline()
	pipe.ZAdd(ctx, rkey, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, rkey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// memoryLimiter is a process-local sliding window for single-instance
// deployments and tests.
type memoryLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewMemoryLimiter creates an in-memory sliding window limiter.
func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	return &memoryLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, key)
	} else {
		l.attempts[key] = kept
	}

	if len(kept) >= l.limit {
		return false, nil
	}
	l.attempts[key] = append(kept, now)
	return true, nil
}
