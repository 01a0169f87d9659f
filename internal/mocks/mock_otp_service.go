package mocks

import (
	"context"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// MockOTPService implements domain.OTPService for testing
type MockOTPService struct {
	SendFunc   func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error)
	VerifyFunc func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose, code string) (*domain.OTPResult, error)
	ResendFunc func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

func (m *MockOTPService) Send(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, identifier, channel, purpose)
	}
	return &domain.OTPDelivery{Identifier: identifier, Channel: channel, Purpose: purpose, ExpiresIn: 600}, nil
}

func (m *MockOTPService) Verify(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose, code string) (*domain.OTPResult, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, identifier, channel, purpose, code)
	}
	return &domain.OTPResult{Verified: true}, nil
}

func (m *MockOTPService) Resend(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error) {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, identifier, channel, purpose)
	}
	return &domain.OTPDelivery{Identifier: identifier, Channel: channel, Purpose: purpose, ExpiresIn: 600}, nil
}
