package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis builds a client with bounded per-call timeouts so a cache outage
// surfaces as a fast, breaker-countable failure instead of request latency.
func NewRedis(addr, pass string, db int, timeout time.Duration) *redis.Client {
	if timeout <= 0 {
		timeout = 800 * time.Millisecond
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

// Ping verifies connectivity at startup.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
