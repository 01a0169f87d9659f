package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/config"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/breaker"
)

// RateLimiterImpl implements domain.RateLimiter with windowed counters in
// Redis. Counters use atomic INCR so concurrent workers never undercount.
type RateLimiterImpl struct {
	client *redis.Client
	cb     *breaker.Breaker
	rules  map[string]config.RateLimit
	logger zerolog.Logger
}

// NewRateLimiter creates a Redis-backed rate limiter
func NewRateLimiter(client *redis.Client, cb *breaker.Breaker, rules map[string]config.RateLimit, logger zerolog.Logger) domain.RateLimiter {
	return &RateLimiterImpl{client: client, cb: cb, rules: rules, logger: logger}
}

func rateLimitKey(action, key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", action, key)
}

// Check implements domain.RateLimiter. When the cache is unreachable the
// limiter denies.
func (l *RateLimiterImpl) Check(ctx context.Context, action, key string) (*domain.RateDecision, error) {
	rule, ok := l.rules[action]
	if !ok {
		return nil, fmt.Errorf("no rate limit rule for action %q", action)
	}

	redisKey := rateLimitKey(action, key)

	var current int64
	var retryAfter time.Duration
	err := l.cb.Execute(ctx, func(ctx context.Context) error {
		n, err := l.client.Incr(ctx, redisKey).Result()
		if err != nil {
			return err
		}
		current = n
		if n == 1 {
			if err := l.client.Expire(ctx, redisKey, rule.Window).Err(); err != nil {
				return err
			}
			retryAfter = rule.Window
			return nil
		}
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil {
			return err
		}
		if ttl > 0 {
			retryAfter = ttl
		} else {
			retryAfter = rule.Window
		}
		return nil
	})
	if err != nil {
		l.logger.Warn().Err(err).Str("action", action).Msg("rate limiter unavailable, denying")
		return &domain.RateDecision{
			Allowed:    false,
			Limit:      int64(rule.Limit),
			RetryAfter: rule.Window,
		}, nil
	}

	remaining := int64(rule.Limit) - current
	if remaining < 0 {
		remaining = 0
	}
	return &domain.RateDecision{
		Allowed:    current <= int64(rule.Limit),
		Current:    current,
		Limit:      int64(rule.Limit),
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}, nil
}
