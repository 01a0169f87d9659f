package mocks

import (
	"context"
	"time"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// MockSessionRepository implements domain.SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc             func(ctx context.Context, session *domain.Session) error
	FindByIDFunc           func(ctx context.Context, sessionID string) (*domain.Session, error)
	RotateRefreshTokenFunc func(ctx context.Context, sessionID, newTokenID string) error
	DeleteFunc             func(ctx context.Context, sessionID string) error
	DeleteAllForUserFunc   func(ctx context.Context, userID uint) (int64, error)
	ExtendTTLFunc          func(ctx context.Context, sessionID string, ttl time.Duration) error
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) RotateRefreshToken(ctx context.Context, sessionID, newTokenID string) error {
	if m.RotateRefreshTokenFunc != nil {
		return m.RotateRefreshTokenFunc(ctx, sessionID, newTokenID)
	}
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockSessionRepository) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	if m.DeleteAllForUserFunc != nil {
		return m.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockSessionRepository) ExtendTTL(ctx context.Context, sessionID string, ttl time.Duration) error {
	if m.ExtendTTLFunc != nil {
		return m.ExtendTTLFunc(ctx, sessionID, ttl)
	}
	return nil
}
