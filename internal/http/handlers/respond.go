package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// fieldError is one entry of a request validation failure.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// bindJSON binds the request body and writes the validation response itself.
// Returns false when the handler should stop.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError{
				Loc:  []string{"body", strings.ToLower(fe.Field())},
				Msg:  validationMessage(fe),
				Type: fe.Tag(),
			})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail":      out,
			"status_code": http.StatusUnprocessableEntity,
		})
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"detail":      "invalid request body",
		"status_code": http.StatusBadRequest,
	})
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	default:
		return "invalid value"
	}
}

// respondError maps a service error onto the response envelope. Throttling
// errors carry a Retry-After header; unexpected errors never leak internals.
func respondError(c *gin.Context, err error) {
	var retryErr *domain.RetryAfterError
	if errors.As(err, &retryErr) {
		seconds := int(math.Ceil(retryErr.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
	}

	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal server error"
	}
	c.JSON(status, gin.H{"detail": detail, "status_code": status})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrTokenReuseDetected),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserInactive),
		errors.Is(err, domain.ErrAccountLocked),
		errors.Is(err, domain.ErrEmailNotVerified),
		errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIdentifierTaken),
		errors.Is(err, domain.ErrConcurrentRefresh):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPasswordPolicy),
		errors.Is(err, domain.ErrOTPInvalid),
		errors.Is(err, domain.ErrOTPNotFound),
		errors.Is(err, domain.ErrResetTokenInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTooManyAttempts),
		errors.Is(err, domain.ErrOTPAttemptsExceeded),
		errors.Is(err, domain.ErrResendTooSoon),
		errors.Is(err, domain.ErrResendLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrDependencyUnavailable),
		errors.Is(err, domain.ErrNotificationFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userProfile is the public shape of a user across all endpoints.
func userProfile(user *domain.User) gin.H {
	return gin.H{
		"id":             user.ID,
		"email":          user.Email,
		"username":       user.Username,
		"phone":          user.Phone,
		"full_name":      user.FullName,
		"role":           user.Role,
		"is_active":      user.IsActive,
		"email_verified": user.EmailVerified,
		"phone_verified": user.PhoneVerified,
		"last_login":     user.LastLogin,
		"created_at":     user.CreatedAt,
		"updated_at":     user.UpdatedAt,
	}
}

// currentUserID reads the authenticated user's ID from the request context.
func currentUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	str, ok := raw.(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(str, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
