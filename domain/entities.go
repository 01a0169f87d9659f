package domain

import "time"

// Roles assignable to a user.
const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// OTPChannel selects the delivery channel for a one-time code.
type OTPChannel string

const (
	ChannelEmail    OTPChannel = "email"
	ChannelWhatsApp OTPChannel = "whatsapp"
)

// OTPPurpose scopes a one-time code to a single flow. Codes issued for one
// purpose never verify under another.
type OTPPurpose string

const (
	PurposeVerification  OTPPurpose = "verification"
	PurposePasswordReset OTPPurpose = "password_reset"
	PurposeLogin         OTPPurpose = "login"
)

// User represents a principal in the system. Users are deactivated, never
// deleted.
type User struct {
	ID                  uint
	Email               string
	Username            string
	Phone               string
	FullName            string
	PasswordHash        string
	Role                string
	IsActive            bool
	EmailVerified       bool
	PhoneVerified       bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLogin           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Session binds a user to one active refresh-token lineage. RefreshTokenID
// holds the JTI of the currently valid refresh token; rotation replaces it,
// which is what makes a stolen, already-used refresh token detectable.
type Session struct {
	ID             string
	UserID         uint
	RefreshTokenID string
	RememberMe     bool
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// AuthResult represents a successful login or refresh.
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64
}

// TokenClaims are the validated claims of an access or refresh token.
type TokenClaims struct {
	UserID    uint
	Role      string
	SessionID string
	TokenType string
	TokenID   string
	IssuedAt  int64
	ExpiresAt int64
}

// OTPDelivery reports the outcome of sending a one-time code.
type OTPDelivery struct {
	Identifier string
	Channel    OTPChannel
	Purpose    OTPPurpose
	ExpiresIn  int64
}

// OTPResult reports the outcome of a verification attempt.
type OTPResult struct {
	Verified          bool
	RemainingAttempts int
}

// RateDecision is the outcome of a rate-limit check. RetryAfter is only
// meaningful when Allowed is false.
type RateDecision struct {
	Allowed    bool
	Current    int64
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}
