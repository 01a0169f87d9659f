package mocks

import (
	"context"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// MockRateLimiter implements domain.RateLimiter for testing
type MockRateLimiter struct {
	CheckFunc func(ctx context.Context, action, key string) (*domain.RateDecision, error)
}

// NewMockRateLimiter creates a new MockRateLimiter that allows everything
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{}
}

func (m *MockRateLimiter) Check(ctx context.Context, action, key string) (*domain.RateDecision, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, action, key)
	}
	return &domain.RateDecision{Allowed: true, Current: 1, Limit: 100, Remaining: 99}, nil
}
