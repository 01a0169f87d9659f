package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByIdentifier resolves an email, username or phone number.
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, int64, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	SetActive(ctx context.Context, userID uint, active bool) error
	MarkVerified(ctx context.Context, userID uint, channel OTPChannel) error
}

// SessionRepository defines session data access operations. Implementations
// must fail closed: when the backing store is unreachable the caller receives
// ErrDependencyUnavailable, never a silently missing session.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	// RotateRefreshToken swaps the session's refresh token lineage to newTokenID.
	RotateRefreshToken(ctx context.Context, sessionID, newTokenID string) error
	Delete(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, userID uint) (int64, error)
	ExtendTTL(ctx context.Context, sessionID string, ttl time.Duration) error
}

// ResetTokenRepository stores single-use password reset link tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token string, userID uint, ttl time.Duration) error
	// Peek checks validity without consuming the token.
	Peek(ctx context.Context, token string) (uint, error)
	// Consume atomically invalidates the token and returns its user.
	Consume(ctx context.Context, token string) (uint, error)
}

// AuthService defines authentication business logic
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	LogoutAll(ctx context.Context, userID uint) (int64, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email, resetBaseURL string) error
	VerifyResetToken(ctx context.Context, token string) (*User, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	RequestPasswordResetOTP(ctx context.Context, identifier string, channel OTPChannel) (*OTPDelivery, error)
	ResetPasswordOTP(ctx context.Context, identifier string, channel OTPChannel, code, newPassword string) error
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
}

// RegisterInput carries the registration fields. Role defaults to customer
// when empty.
type RegisterInput struct {
	Email    string
	Username string
	Phone    string
	FullName string
	Password string
	Role     string
}

// LoginInput carries the login fields. Identifier may be an email, username
// or phone number.
type LoginInput struct {
	Identifier string
	Password   string
	RememberMe bool
	ClientIP   string
}

// OTPService defines one-time code operations
type OTPService interface {
	Send(ctx context.Context, identifier string, channel OTPChannel, purpose OTPPurpose) (*OTPDelivery, error)
	Verify(ctx context.Context, identifier string, channel OTPChannel, purpose OTPPurpose, code string) (*OTPResult, error)
	Resend(ctx context.Context, identifier string, channel OTPChannel, purpose OTPPurpose) (*OTPDelivery, error)
}

// RateLimiter guards an action with a per-key windowed counter. A Deny
// decision means the guarded side effect must not happen.
type RateLimiter interface {
	Check(ctx context.Context, action, key string) (*RateDecision, error)
}

// Rate-limited action classes.
const (
	ActionLogin         = "login"
	ActionOTPSend       = "otp_send"
	ActionPasswordReset = "password_reset"
)

// PasswordService defines password hashing operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations. Refresh tokens carry a JTI that ties
// them to a session's refresh lineage.
type TokenService interface {
	GenerateAccessToken(userID uint, role string, sessionID string) (string, error)
	GenerateRefreshToken(userID uint, role string, sessionID string) (token string, tokenID string, err error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
	AccessTTL() time.Duration
}

// NotificationService defines outbound delivery operations
type NotificationService interface {
	SendWhatsApp(to, message string) error
	SendEmail(to, subject, body string) error
}
