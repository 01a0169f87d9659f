package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/breaker"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func testBreaker() *breaker.Breaker {
	return breaker.New(breaker.Config{Name: "test", Logger: zerolog.Nop()})
}

func testSession(id string, userID uint) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:             id,
		UserID:         userID,
		RefreshTokenID: "jti-" + id,
		RememberMe:     false,
		CreatedAt:      now,
		ExpiresAt:      now.Add(30 * time.Minute),
	}
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewSessionRepository(client, testBreaker())
	ctx := context.Background()

	session := testSession("s1", 42)
	session.RememberMe = true
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.FindByID(ctx, "s1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.UserID != 42 {
		t.Errorf("UserID = %d, want 42", got.UserID)
	}
	if got.RefreshTokenID != "jti-s1" {
		t.Errorf("RefreshTokenID = %q, want jti-s1", got.RefreshTokenID)
	}
	if !got.RememberMe {
		t.Error("RememberMe = false, want true")
	}
}

func TestSessionRepository_FindMissing(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewSessionRepository(client, testBreaker())

	_, err := repo.FindByID(context.Background(), "nope")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("FindByID() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRepository_RotateRefreshToken(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewSessionRepository(client, testBreaker())
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("s1", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.RotateRefreshToken(ctx, "s1", "new-jti"); err != nil {
		t.Fatalf("RotateRefreshToken() error = %v", err)
	}
	got, err := repo.FindByID(ctx, "s1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.RefreshTokenID != "new-jti" {
		t.Errorf("RefreshTokenID = %q, want new-jti", got.RefreshTokenID)
	}

	// Rotating a revoked session must not recreate it.
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	err = repo.RotateRefreshToken(ctx, "s1", "other-jti")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("RotateRefreshToken() after delete error = %v, want ErrSessionNotFound", err)
	}
	if _, err := repo.FindByID(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("session resurrected by rotation: %v", err)
	}
}

func TestSessionRepository_DeleteIsIdempotent(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewSessionRepository(client, testBreaker())
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("s1", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestSessionRepository_DeleteAllForUser(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewSessionRepository(client, testBreaker())
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, testSession(id, 9)); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}
	if err := repo.Create(ctx, testSession("other", 10)); err != nil {
		t.Fatalf("Create(other) error = %v", err)
	}

	deleted, err := repo.DeleteAllForUser(ctx, 9)
	if err != nil {
		t.Fatalf("DeleteAllForUser() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	for _, id := range []string{"a", "b", "c"} {
		if _, err := repo.FindByID(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("session %s survived DeleteAllForUser", id)
		}
	}
	if _, err := repo.FindByID(ctx, "other"); err != nil {
		t.Errorf("unrelated session deleted: %v", err)
	}
}

func TestSessionRepository_DeleteAllOutlivesShortSessions(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewSessionRepository(client, testBreaker())
	ctx := context.Background()

	long := testSession("long", 7)
	long.RememberMe = true
	long.ExpiresAt = time.Now().Add(24 * time.Hour)
	if err := repo.Create(ctx, long); err != nil {
		t.Fatalf("Create(long) error = %v", err)
	}
	if err := repo.Create(ctx, testSession("short", 7)); err != nil {
		t.Fatalf("Create(short) error = %v", err)
	}

	// A later short-lived login must not cut the user set's lifetime below
	// the remember-me session's.
	if ttl := mr.TTL("usersessions:7"); ttl < 23*time.Hour {
		t.Fatalf("user set TTL = %v, want about 24h", ttl)
	}

	mr.FastForward(31 * time.Minute)

	deleted, err := repo.DeleteAllForUser(ctx, 7)
	if err != nil {
		t.Fatalf("DeleteAllForUser() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1 (the surviving session)", deleted)
	}
	if _, err := repo.FindByID(ctx, "long"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("long-lived session survived DeleteAllForUser: %v", err)
	}
}

func TestSessionRepository_ExtendTTLKeepsUserSetAlive(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewSessionRepository(client, testBreaker())
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("s1", 3)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Keep refreshing past the original 30m lifetime; the set must slide
	// along with the session key.
	for i := 0; i < 3; i++ {
		mr.FastForward(25 * time.Minute)
		if err := repo.ExtendTTL(ctx, "s1", 30*time.Minute); err != nil {
			t.Fatalf("ExtendTTL() #%d error = %v", i+1, err)
		}
	}

	if setTTL, keyTTL := mr.TTL("usersessions:3"), mr.TTL("session:s1"); setTTL < keyTTL {
		t.Errorf("user set TTL %v shorter than session TTL %v", setTTL, keyTTL)
	}

	deleted, err := repo.DeleteAllForUser(ctx, 3)
	if err != nil {
		t.Fatalf("DeleteAllForUser() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := repo.FindByID(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("session survived DeleteAllForUser: %v", err)
	}
}

func TestSessionRepository_ExtendTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewSessionRepository(client, testBreaker())
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("s1", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.ExtendTTL(ctx, "s1", 24*time.Hour); err != nil {
		t.Fatalf("ExtendTTL() error = %v", err)
	}

	ttl := mr.TTL("session:s1")
	if ttl < 23*time.Hour {
		t.Errorf("key TTL = %v, want about 24h", ttl)
	}
	got, err := repo.FindByID(ctx, "s1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if until := time.Until(got.ExpiresAt); until < 23*time.Hour {
		t.Errorf("record ExpiresAt %v from now, want about 24h", until)
	}
}

func TestSessionRepository_FailsClosedWhenRedisDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	cb := breaker.New(breaker.Config{Name: "test", FailureThreshold: 1, Logger: zerolog.Nop()})
	repo := NewSessionRepository(client, cb)
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("s1", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mr.Close()

	// First call fails with a transport error and trips the breaker.
	if _, err := repo.FindByID(ctx, "s1"); err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("FindByID() with redis down error = %v, want transport error", err)
	}
	// Subsequent calls short-circuit.
	if _, err := repo.FindByID(ctx, "s1"); !errors.Is(err, domain.ErrDependencyUnavailable) {
		t.Errorf("FindByID() error = %v, want ErrDependencyUnavailable", err)
	}
}
