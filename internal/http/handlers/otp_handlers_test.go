package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/mocks"
)

func newOTPHandlers() (*OTPHandlers, *mocks.MockOTPService, *mocks.MockUserRepository, *mocks.MockRateLimiter) {
	otpSvc := mocks.NewMockOTPService()
	userRepo := mocks.NewMockUserRepository()
	limiter := mocks.NewMockRateLimiter()
	return NewOTPHandlers(otpSvc, userRepo, limiter), otpSvc, userRepo, limiter
}

func TestOTPHandlers_Send(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, otpSvc, _, _ := newOTPHandlers()
	otpSvc.SendFunc = func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error) {
		return &domain.OTPDelivery{Identifier: identifier, Channel: channel, Purpose: purpose, ExpiresIn: 600}, nil
	}

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/auth/send-otp", OTPSendRequest{
		Identifier: "user@example.com",
		Channel:    "email",
		Purpose:    "verification",
	})
	handler.Send(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["expires_in"] != float64(600) {
		t.Errorf("expires_in = %v, want 600", body["expires_in"])
	}
}

func TestOTPHandlers_SendThrottled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, otpSvc, _, limiter := newOTPHandlers()
	limiter.CheckFunc = func(ctx context.Context, action, key string) (*domain.RateDecision, error) {
		return &domain.RateDecision{Allowed: false, RetryAfter: time.Hour}, nil
	}
	sent := false
	otpSvc.SendFunc = func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error) {
		sent = true
		return nil, nil
	}

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/auth/send-otp", OTPSendRequest{
		Identifier: "user@example.com",
		Channel:    "email",
		Purpose:    "verification",
	})
	handler.Send(c)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set")
	}
	if sent {
		t.Error("code sent despite rate limit denial")
	}
}

func TestOTPHandlers_SendInvalidChannel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, _, _, _ := newOTPHandlers()

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/auth/send-otp", OTPSendRequest{
		Identifier: "user@example.com",
		Channel:    "sms",
		Purpose:    "verification",
	})
	handler.Send(c)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestOTPHandlers_VerifySuccessMarksVerified(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, otpSvc, userRepo, _ := newOTPHandlers()
	otpSvc.VerifyFunc = func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose, code string) (*domain.OTPResult, error) {
		return &domain.OTPResult{Verified: true}, nil
	}
	userRepo.FindByIdentifierFunc = func(ctx context.Context, identifier string) (*domain.User, error) {
		return &domain.User{ID: 1, Email: identifier}, nil
	}
	var markedChannel domain.OTPChannel
	userRepo.MarkVerifiedFunc = func(ctx context.Context, userID uint, channel domain.OTPChannel) error {
		markedChannel = channel
		return nil
	}

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/auth/verify-otp", OTPVerifyRequest{
		Identifier: "user@example.com",
		Channel:    "email",
		Purpose:    "verification",
		Code:       "123456",
	})
	handler.Verify(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if markedChannel != domain.ChannelEmail {
		t.Errorf("marked channel = %q, want email", markedChannel)
	}
	if body := decodeBody(t, w); body["verified"] != true {
		t.Errorf("verified = %v, want true", body["verified"])
	}
}

func TestOTPHandlers_VerifyPasswordResetDoesNotTouchUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, otpSvc, userRepo, _ := newOTPHandlers()
	otpSvc.VerifyFunc = func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose, code string) (*domain.OTPResult, error) {
		return &domain.OTPResult{Verified: true}, nil
	}
	marked := false
	userRepo.MarkVerifiedFunc = func(ctx context.Context, userID uint, channel domain.OTPChannel) error {
		marked = true
		return nil
	}

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/auth/verify-otp", OTPVerifyRequest{
		Identifier: "user@example.com",
		Channel:    "email",
		Purpose:    "password_reset",
		Code:       "123456",
	})
	handler.Verify(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if marked {
		t.Error("password_reset verification must not mark the identifier verified")
	}
}

func TestOTPHandlers_VerifyWrongCodeReportsRemaining(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, otpSvc, _, _ := newOTPHandlers()
	otpSvc.VerifyFunc = func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose, code string) (*domain.OTPResult, error) {
		return &domain.OTPResult{Verified: false, RemainingAttempts: 2}, domain.ErrOTPInvalid
	}

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/auth/verify-otp", OTPVerifyRequest{
		Identifier: "user@example.com",
		Channel:    "email",
		Purpose:    "verification",
		Code:       "000000",
	})
	handler.Verify(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := decodeBody(t, w)
	if body["remaining_attempts"] != float64(2) {
		t.Errorf("remaining_attempts = %v, want 2", body["remaining_attempts"])
	}
}

func TestOTPHandlers_VerifyExhausted(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, otpSvc, _, _ := newOTPHandlers()
	otpSvc.VerifyFunc = func(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose, code string) (*domain.OTPResult, error) {
		return &domain.OTPResult{Verified: false, RemainingAttempts: 0}, domain.ErrOTPAttemptsExceeded
	}

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/auth/verify-otp", OTPVerifyRequest{
		Identifier: "user@example.com",
		Channel:    "email",
		Purpose:    "verification",
		Code:       "123456",
	})
	handler.Verify(c)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}
