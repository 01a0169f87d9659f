package domain

import (
	"errors"
	"fmt"
	"time"
)

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentifierTaken    = errors.New("identifier already registered")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrPasswordPolicy     = errors.New("password does not meet policy")
)

// OTP errors
var (
	ErrOTPNotFound         = errors.New("otp not found or expired")
	ErrOTPInvalid          = errors.New("invalid otp code")
	ErrOTPAttemptsExceeded = errors.New("maximum otp attempts exceeded")
	ErrResendTooSoon       = errors.New("otp resend cooldown active")
	ErrResendLimitExceeded = errors.New("otp resend limit exceeded")
)

// Token errors
var (
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenMalformed     = errors.New("malformed token")
	ErrTokenReuseDetected = errors.New("refresh token reuse detected")
	ErrResetTokenInvalid  = errors.New("invalid or expired password reset token")
)

// Session errors
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session has expired")
	ErrConcurrentRefresh = errors.New("concurrent token refresh detected")
)

// Throttling and dependency errors
var (
	ErrTooManyAttempts       = errors.New("too many attempts")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrNotificationFailed    = errors.New("notification could not be delivered")
)

// Authorization errors
var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInsufficientRole = errors.New("insufficient role permissions")
)

// clientErrors are business-rule violations: they surface as 4xx responses
// and must never trip the circuit breaker.
var clientErrors = []error{
	ErrUserNotFound, ErrInvalidCredentials, ErrIdentifierTaken, ErrUserInactive,
	ErrAccountLocked, ErrEmailNotVerified, ErrPasswordPolicy,
	ErrOTPNotFound, ErrOTPInvalid, ErrOTPAttemptsExceeded,
	ErrResendTooSoon, ErrResendLimitExceeded,
	ErrTokenInvalid, ErrTokenExpired, ErrTokenMalformed, ErrTokenReuseDetected,
	ErrResetTokenInvalid,
	ErrSessionNotFound, ErrSessionExpired, ErrConcurrentRefresh,
	ErrTooManyAttempts, ErrUnauthorized, ErrInsufficientRole,
}

// IsClientError reports whether err is a well-formed business outcome rather
// than a transport or availability failure.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RetryAfterError decorates a throttling error with the wait the client
// should be told about. It never reveals why the underlying check failed.
type RetryAfterError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", e.Err, e.RetryAfter)
}

func (e *RetryAfterError) Unwrap() error { return e.Err }
