package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/breaker"
)

const (
	sessionKeyPrefix    = "session:"
	userSessionsKeyFmt  = "usersessions:%d"
	sessionFieldUser    = "user_id"
	sessionFieldRefresh = "refresh_token_id"
)

// rotateScript swaps the refresh token lineage only if the session still
// exists, so rotation can never resurrect a revoked session.
var rotateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'refresh_token_id', ARGV[1])
return 1
`)

// extendScript keeps the stored expiry and the key TTL in lockstep, and
// lengthens the per-user set alongside so the index outlives the session.
var extendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'expires_at', ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[1])
local setKey = 'usersessions:' .. redis.call('HGET', KEYS[1], 'user_id')
if redis.call('TTL', setKey) < tonumber(ARGV[1]) then
	redis.call('EXPIRE', setKey, ARGV[1])
end
return 1
`)

// touchSetScript lengthens the per-user set's TTL, never shortens it: the set
// must outlive its longest-lived member or revocation loses track of live
// sessions.
var touchSetScript = redis.NewScript(`
if redis.call('TTL', KEYS[1]) < tonumber(ARGV[1]) then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return 1
`)

// SessionRepositoryImpl implements domain.SessionRepository on Redis. Every
// call crosses the circuit breaker: when Redis is down callers receive
// ErrDependencyUnavailable and must treat the request as unauthenticated.
type SessionRepositoryImpl struct {
	client *redis.Client
	cb     *breaker.Breaker
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client *redis.Client, cb *breaker.Breaker) domain.SessionRepository {
	return &SessionRepositoryImpl{client: client, cb: cb}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

func userSessionsKey(userID uint) string { return fmt.Sprintf(userSessionsKeyFmt, userID) }

// Create implements domain.SessionRepository. The record's ExpiresAt and the
// Redis TTL are derived from the same instant; one never outlives the other.
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	return r.cb.Execute(ctx, func(ctx context.Context) error {
		key := sessionKey(session.ID)
		setKey := userSessionsKey(session.UserID)

		pipe := r.client.TxPipeline()
		pipe.HSet(ctx, key,
			"id", session.ID,
			sessionFieldUser, session.UserID,
			sessionFieldRefresh, session.RefreshTokenID,
			"remember_me", session.RememberMe,
			"created_at", session.CreatedAt.Unix(),
			"expires_at", session.ExpiresAt.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		pipe.SAdd(ctx, setKey, session.ID)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		return touchSetScript.Run(ctx, r.client, []string{setKey}, int64(ttl.Seconds())).Err()
	})
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	var fields map[string]string
	err := r.cb.Execute(ctx, func(ctx context.Context) error {
		res, err := r.client.HGetAll(ctx, sessionKey(sessionID)).Result()
		if err != nil {
			return err
		}
		fields = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	// HGETALL returns an empty map for a missing key; genuine expiry is a
	// normal not-found, not a dependency failure.
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	session, err := sessionFromFields(fields)
	if err != nil {
		return nil, err
	}
	if session.ExpiresAt.Before(time.Now()) {
		_ = r.Delete(ctx, sessionID)
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// RotateRefreshToken implements domain.SessionRepository
func (r *SessionRepositoryImpl) RotateRefreshToken(ctx context.Context, sessionID, newTokenID string) error {
	var updated int64
	err := r.cb.Execute(ctx, func(ctx context.Context) error {
		res, err := rotateScript.Run(ctx, r.client, []string{sessionKey(sessionID)}, newTokenID).Int64()
		if err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		return err
	}
	if updated == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete implements domain.SessionRepository
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	return r.cb.Execute(ctx, func(ctx context.Context) error {
		userField, err := r.client.HGet(ctx, sessionKey(sessionID), sessionFieldUser).Result()
		if err == redis.Nil {
			// Already gone; deletion is idempotent.
			return nil
		}
		if err != nil {
			return err
		}

		pipe := r.client.TxPipeline()
		pipe.Del(ctx, sessionKey(sessionID))
		if userID, convErr := strconv.ParseUint(userField, 10, 32); convErr == nil {
			pipe.SRem(ctx, userSessionsKey(uint(userID)), sessionID)
		}
		_, err = pipe.Exec(ctx)
		return err
	})
}

// DeleteAllForUser implements domain.SessionRepository. Used by logout-all and
// by both password reset paths.
func (r *SessionRepositoryImpl) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	var deleted int64
	err := r.cb.Execute(ctx, func(ctx context.Context) error {
		setKey := userSessionsKey(userID)
		ids, err := r.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(ids)+1)
		for _, id := range ids {
			keys = append(keys, sessionKey(id))
		}
		keys = append(keys, setKey)

		n, err := r.client.Del(ctx, keys...).Result()
		if err != nil {
			return err
		}
		deleted = n - 1 // exclude the set itself
		if deleted < 0 {
			deleted = 0
		}
		return nil
	})
	return deleted, err
}

// ExtendTTL implements domain.SessionRepository
func (r *SessionRepositoryImpl) ExtendTTL(ctx context.Context, sessionID string, ttl time.Duration) error {
	var updated int64
	err := r.cb.Execute(ctx, func(ctx context.Context) error {
		res, err := extendScript.Run(ctx, r.client,
			[]string{sessionKey(sessionID)},
			int64(ttl.Seconds()), time.Now().Add(ttl).Unix(),
		).Int64()
		if err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		return err
	}
	if updated == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func sessionFromFields(fields map[string]string) (*domain.Session, error) {
	userID, err := strconv.ParseUint(fields[sessionFieldUser], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}
	remember, _ := strconv.ParseBool(fields["remember_me"])

	return &domain.Session{
		ID:             fields["id"],
		UserID:         uint(userID),
		RefreshTokenID: fields[sessionFieldRefresh],
		RememberMe:     remember,
		CreatedAt:      time.Unix(createdAt, 0),
		ExpiresAt:      time.Unix(expiresAt, 0),
	}, nil
}
