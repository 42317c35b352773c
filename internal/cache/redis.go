package cache

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and returns a new Redis client.
// Redis backs the token revocation list, the login rate limiter, and the
// OAuth code deduplicator, so a failed connection is fatal at startup.
func NewRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Fatal("REDIS_URL environment variable is not set")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("could not parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("could not connect to Redis: %v", err)
	}

	return client
}
