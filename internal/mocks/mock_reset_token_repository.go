package mocks

import (
	"context"
	"time"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// MockResetTokenRepository implements domain.ResetTokenRepository for testing
type MockResetTokenRepository struct {
	CreateFunc  func(ctx context.Context, token string, userID uint, ttl time.Duration) error
	PeekFunc    func(ctx context.Context, token string) (uint, error)
	ConsumeFunc func(ctx context.Context, token string) (uint, error)
}

// NewMockResetTokenRepository creates a new MockResetTokenRepository with default behaviors
func NewMockResetTokenRepository() *MockResetTokenRepository {
	return &MockResetTokenRepository{}
}

func (m *MockResetTokenRepository) Create(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token, userID, ttl)
	}
	return nil
}

func (m *MockResetTokenRepository) Peek(ctx context.Context, token string) (uint, error) {
	if m.PeekFunc != nil {
		return m.PeekFunc(ctx, token)
	}
	return 0, domain.ErrResetTokenInvalid
}

func (m *MockResetTokenRepository) Consume(ctx context.Context, token string) (uint, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, token)
	}
	return 0, domain.ErrResetTokenInvalid
}
