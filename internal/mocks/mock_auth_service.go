package mocks

import (
	"context"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// MockAuthService implements domain.AuthService for testing
type MockAuthService struct {
	RegisterFunc                func(ctx context.Context, input domain.RegisterInput) (*domain.User, error)
	LoginFunc                   func(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error)
	RefreshTokenFunc            func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	LogoutFunc                  func(ctx context.Context, sessionID string) error
	LogoutAllFunc               func(ctx context.Context, userID uint) (int64, error)
	ChangePasswordFunc          func(ctx context.Context, userID uint, currentPassword, newPassword string) error
	RequestPasswordResetFunc    func(ctx context.Context, email, resetBaseURL string) error
	VerifyResetTokenFunc        func(ctx context.Context, token string) (*domain.User, error)
	ResetPasswordFunc           func(ctx context.Context, token, newPassword string) error
	RequestPasswordResetOTPFunc func(ctx context.Context, identifier string, channel domain.OTPChannel) (*domain.OTPDelivery, error)
	ResetPasswordOTPFunc        func(ctx context.Context, identifier string, channel domain.OTPChannel, code, newPassword string) error
	GetUserProfileFunc          func(ctx context.Context, userID uint) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return &domain.User{ID: 1, Email: input.Email, Username: input.Username, Role: domain.RoleCustomer, IsActive: true}, nil
}

func (m *MockAuthService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, input)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
	}
	return nil
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email, resetBaseURL string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email, resetBaseURL)
	}
	return nil
}

func (m *MockAuthService) VerifyResetToken(ctx context.Context, token string) (*domain.User, error) {
	if m.VerifyResetTokenFunc != nil {
		return m.VerifyResetTokenFunc(ctx, token)
	}
	return nil, domain.ErrResetTokenInvalid
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

func (m *MockAuthService) RequestPasswordResetOTP(ctx context.Context, identifier string, channel domain.OTPChannel) (*domain.OTPDelivery, error) {
	if m.RequestPasswordResetOTPFunc != nil {
		return m.RequestPasswordResetOTPFunc(ctx, identifier, channel)
	}
	return &domain.OTPDelivery{Identifier: identifier, Channel: channel, Purpose: domain.PurposePasswordReset, ExpiresIn: 600}, nil
}

func (m *MockAuthService) ResetPasswordOTP(ctx context.Context, identifier string, channel domain.OTPChannel, code, newPassword string) error {
	if m.ResetPasswordOTPFunc != nil {
		return m.ResetPasswordOTPFunc(ctx, identifier, channel, code, newPassword)
	}
	return nil
}

func (m *MockAuthService) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}
