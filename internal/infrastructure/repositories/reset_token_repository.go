package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/breaker"
)

const resetKeyPrefix = "pwdreset:"

// consumeScript deletes the token in the same step that reads it, making the
// reset link single-use even under concurrent submissions.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
	return false
end
redis.call('DEL', KEYS[1])
return v
`)

// ResetTokenRepositoryImpl stores opaque password-reset link tokens in Redis.
type ResetTokenRepositoryImpl struct {
	client *redis.Client
	cb     *breaker.Breaker
}

// NewResetTokenRepository creates a new reset token repository
func NewResetTokenRepository(client *redis.Client, cb *breaker.Breaker) domain.ResetTokenRepository {
	return &ResetTokenRepositoryImpl{client: client, cb: cb}
}

// Create implements domain.ResetTokenRepository
func (r *ResetTokenRepositoryImpl) Create(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return r.cb.Execute(ctx, func(ctx context.Context) error {
		return r.client.Set(ctx, resetKeyPrefix+token, userID, ttl).Err()
	})
}

// Peek implements domain.ResetTokenRepository
func (r *ResetTokenRepositoryImpl) Peek(ctx context.Context, token string) (uint, error) {
	var raw string
	var found bool
	err := r.cb.Execute(ctx, func(ctx context.Context) error {
		res, err := r.client.Get(ctx, resetKeyPrefix+token).Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		raw, found = res, true
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domain.ErrResetTokenInvalid
	}
	return parseUserID(raw)
}

// Consume implements domain.ResetTokenRepository
func (r *ResetTokenRepositoryImpl) Consume(ctx context.Context, token string) (uint, error) {
	var raw string
	var found bool
	err := r.cb.Execute(ctx, func(ctx context.Context) error {
		res, err := consumeScript.Run(ctx, r.client, []string{resetKeyPrefix + token}).Result()
		if err == redis.Nil {
			// Script returned false: token missing or already consumed.
			return nil
		}
		if err != nil {
			return err
		}
		if s, ok := res.(string); ok {
			raw, found = s, true
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domain.ErrResetTokenInvalid
	}
	return parseUserID(raw)
}

func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, domain.ErrResetTokenInvalid
	}
	return uint(id), nil
}
