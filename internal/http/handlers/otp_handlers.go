package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// OTPHandlers serves the one-time code endpoints.
type OTPHandlers struct {
	otpSvc   domain.OTPService
	userRepo domain.UserRepository
	limiter  domain.RateLimiter
}

// NewOTPHandlers creates new OTP handlers
func NewOTPHandlers(otpSvc domain.OTPService, userRepo domain.UserRepository, limiter domain.RateLimiter) *OTPHandlers {
	return &OTPHandlers{otpSvc: otpSvc, userRepo: userRepo, limiter: limiter}
}

// OTPSendRequest asks for a code on a channel
type OTPSendRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Channel    string `json:"channel" binding:"required,oneof=email whatsapp"`
	Purpose    string `json:"purpose" binding:"required,oneof=verification password_reset login"`
}

// OTPVerifyRequest presents a code for verification
type OTPVerifyRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Channel    string `json:"channel" binding:"required,oneof=email whatsapp"`
	Purpose    string `json:"purpose" binding:"required,oneof=verification password_reset login"`
	Code       string `json:"code" binding:"required"`
}

// Send handles OTP generation and delivery
func (h *OTPHandlers) Send(c *gin.Context) {
	h.issue(c, false)
}

// Resend replaces any outstanding code with a fresh one.
func (h *OTPHandlers) Resend(c *gin.Context) {
	h.issue(c, true)
}

func (h *OTPHandlers) issue(c *gin.Context, resend bool) {
	var req OTPSendRequest
	if !bindJSON(c, &req) {
		return
	}

	decision, err := h.limiter.Check(c.Request.Context(), domain.ActionOTPSend, req.Identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	if !decision.Allowed {
		respondError(c, &domain.RetryAfterError{Err: domain.ErrTooManyAttempts, RetryAfter: decision.RetryAfter})
		return
	}

	send := h.otpSvc.Send
	if resend {
		send = h.otpSvc.Resend
	}
	delivery, err := send(c.Request.Context(), req.Identifier, domain.OTPChannel(req.Channel), domain.OTPPurpose(req.Purpose))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Code sent",
		"channel":    delivery.Channel,
		"expires_in": delivery.ExpiresIn,
	})
}

// Verify handles OTP verification. A verification-purpose success marks the
// matching user identifier as verified.
func (h *OTPHandlers) Verify(c *gin.Context) {
	var req OTPVerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	channel := domain.OTPChannel(req.Channel)
	result, err := h.otpSvc.Verify(c.Request.Context(), req.Identifier, channel, domain.OTPPurpose(req.Purpose), req.Code)
	if err != nil {
		var retryErr *domain.RetryAfterError
		if result != nil && !errors.As(err, &retryErr) {
			status := statusFor(err)
			c.JSON(status, gin.H{
				"detail":             err.Error(),
				"status_code":        status,
				"remaining_attempts": result.RemainingAttempts,
			})
			return
		}
		respondError(c, err)
		return
	}

	if domain.OTPPurpose(req.Purpose) == domain.PurposeVerification {
		user, err := h.userRepo.FindByIdentifier(c.Request.Context(), req.Identifier)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := h.userRepo.MarkVerified(c.Request.Context(), user.ID, channel); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code verified", "verified": true})
}
