package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/config"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/breaker"
)

// storeScript issues a new code atomically. It refuses while the cooldown key
// is live, enforces the hourly resend cap, and resets the attempt counter so a
// fresh code always starts with a full allowance.
//
// Returns {1, 0} on success, {0, cooldownTTL} during cooldown and
// {-1, windowTTL} when the resend cap is hit.
var storeScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return {0, redis.call("TTL", KEYS[2])}
end
local resends = redis.call("INCR", KEYS[4])
if resends == 1 then
	redis.call("EXPIRE", KEYS[4], tonumber(ARGV[5]))
end
if resends > tonumber(ARGV[6]) then
	return {-1, redis.call("TTL", KEYS[4])}
end
redis.call("HSET", KEYS[1], "hash", ARGV[1])
redis.call("HSET", KEYS[1], "ver", ARGV[2])
redis.call("EXPIRE", KEYS[1], tonumber(ARGV[3]))
redis.call("SET", KEYS[2], "1", "EX", tonumber(ARGV[4]))
redis.call("DEL", KEYS[3])
return {1, 0}
`)

// guardScript charges one verification attempt and reads the stored record.
// The attempt counter is checked before the code so an exhausted identifier
// keeps answering "attempts exceeded" even after the code itself was deleted.
//
// Returns {-1} when attempts are exhausted, {0, remaining} when no code is
// stored and {1, remaining, hash, ver} otherwise.
var guardScript = redis.NewScript(`
local attempts = redis.call("INCR", KEYS[2])
if attempts == 1 then
	redis.call("EXPIRE", KEYS[2], tonumber(ARGV[2]))
end
if attempts > tonumber(ARGV[1]) then
	redis.call("DEL", KEYS[1])
	return {-1, 0}
end
local rec = redis.call("HMGET", KEYS[1], "hash", "ver")
if not rec[1] then
	return {0, tonumber(ARGV[1]) - attempts}
end
return {1, tonumber(ARGV[1]) - attempts, rec[1], rec[2]}
`)

// consumeScript deletes the code only if its version still matches the one
// the caller verified against, so a resend racing a verify can never be
// consumed by the old code's success.
var consumeScript = redis.NewScript(`
local ver = redis.call("HGET", KEYS[1], "ver")
if ver == ARGV[1] then
	redis.call("DEL", KEYS[1])
	redis.call("DEL", KEYS[2])
	return 1
end
return 0
`)

// OTPServiceImpl stores one-time codes in Redis, hashed, versioned and bound
// to a (purpose, channel, identifier) triple.
type OTPServiceImpl struct {
	client   *redis.Client
	cb       *breaker.Breaker
	notifier domain.NotificationService

	length           int
	ttl              time.Duration
	maxAttempts      int
	resendCooldown   time.Duration
	maxResendPerHour int

	logger zerolog.Logger
}

// NewOTPService creates a Redis-backed OTP service
func NewOTPService(client *redis.Client, cb *breaker.Breaker, notifier domain.NotificationService, cfg *config.Config, logger zerolog.Logger) domain.OTPService {
	return &OTPServiceImpl{
		client:           client,
		cb:               cb,
		notifier:         notifier,
		length:           cfg.OTPLength,
		ttl:              cfg.OTPTTL,
		maxAttempts:      cfg.OTPMaxAttempts,
		resendCooldown:   cfg.OTPResendCooldown,
		maxResendPerHour: cfg.OTPMaxResendPerHour,
		logger:           logger,
	}
}

func otpKey(purpose domain.OTPPurpose, channel domain.OTPChannel, identifier string) string {
	return fmt.Sprintf("otp:%s:%s:%s", purpose, channel, identifier)
}

func otpAttemptsKey(purpose domain.OTPPurpose, channel domain.OTPChannel, identifier string) string {
	return fmt.Sprintf("otpattempts:%s:%s:%s", purpose, channel, identifier)
}

func otpCooldownKey(purpose domain.OTPPurpose, channel domain.OTPChannel, identifier string) string {
	return fmt.Sprintf("otpcooldown:%s:%s:%s", purpose, channel, identifier)
}

func otpResendKey(purpose domain.OTPPurpose, channel domain.OTPChannel, identifier string) string {
	return fmt.Sprintf("otpresend:%s:%s:%s", purpose, channel, identifier)
}

// Send implements domain.OTPService
func (s *OTPServiceImpl) Send(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error) {
	return s.issue(ctx, identifier, channel, purpose)
}

// Resend implements domain.OTPService. Resending invalidates the previous
// code: only the latest one verifies.
func (s *OTPServiceImpl) Resend(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error) {
	return s.issue(ctx, identifier, channel, purpose)
}

func (s *OTPServiceImpl) issue(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose) (*domain.OTPDelivery, error) {
	code, err := generateNumericCode(s.length)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}
	digest := hashCode(code)
	version := uuid.NewString()

	var status int64
	var retryAfter time.Duration
	err = s.cb.Execute(ctx, func(ctx context.Context) error {
		keys := []string{
			otpKey(purpose, channel, identifier),
			otpCooldownKey(purpose, channel, identifier),
			otpAttemptsKey(purpose, channel, identifier),
			otpResendKey(purpose, channel, identifier),
		}
		res, err := storeScript.Run(ctx, s.client, keys,
			digest, version,
			int(s.ttl.Seconds()), int(s.resendCooldown.Seconds()),
			int(time.Hour.Seconds()), s.maxResendPerHour,
		).Int64Slice()
		if err != nil {
			return err
		}
		status = res[0]
		if len(res) > 1 {
			retryAfter = time.Duration(res[1]) * time.Second
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch status {
	case 0:
		return nil, &domain.RetryAfterError{Err: domain.ErrResendTooSoon, RetryAfter: retryAfter}
	case -1:
		return nil, &domain.RetryAfterError{Err: domain.ErrResendLimitExceeded, RetryAfter: retryAfter}
	}

	if err := s.deliver(identifier, channel, purpose, code); err != nil {
		s.logger.Error().Err(err).
			Str("channel", string(channel)).
			Str("purpose", string(purpose)).
			Msg("otp delivery failed")
		return nil, domain.ErrNotificationFailed
	}

	s.logger.Info().
		Str("channel", string(channel)).
		Str("purpose", string(purpose)).
		Msg("otp sent")

	return &domain.OTPDelivery{
		Identifier: identifier,
		Channel:    channel,
		Purpose:    purpose,
		ExpiresIn:  int64(s.ttl.Seconds()),
	}, nil
}

// Verify implements domain.OTPService. Every call charges one attempt,
// matching or not; codes are single use.
func (s *OTPServiceImpl) Verify(ctx context.Context, identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose, code string) (*domain.OTPResult, error) {
	var res []interface{}
	err := s.cb.Execute(ctx, func(ctx context.Context) error {
		keys := []string{
			otpKey(purpose, channel, identifier),
			otpAttemptsKey(purpose, channel, identifier),
		}
		// The attempt counter outlives the code so the allowance cannot be
		// reset by exhausting it.
		out, err := guardScript.Run(ctx, s.client, keys,
			s.maxAttempts, int(s.ttl.Seconds()),
		).Slice()
		if err != nil {
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	status, _ := res[0].(int64)
	switch status {
	case -1:
		return &domain.OTPResult{Verified: false, RemainingAttempts: 0}, domain.ErrOTPAttemptsExceeded
	case 0:
		remaining := toInt(res[1])
		return &domain.OTPResult{Verified: false, RemainingAttempts: remaining}, domain.ErrOTPNotFound
	}

	remaining := toInt(res[1])
	storedHash, _ := res[2].(string)
	version, _ := res[3].(string)

	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashCode(code))) != 1 {
		return &domain.OTPResult{Verified: false, RemainingAttempts: remaining}, domain.ErrOTPInvalid
	}

	var consumed bool
	err = s.cb.Execute(ctx, func(ctx context.Context) error {
		keys := []string{
			otpKey(purpose, channel, identifier),
			otpAttemptsKey(purpose, channel, identifier),
		}
		n, err := consumeScript.Run(ctx, s.client, keys, version).Int64()
		if err != nil {
			return err
		}
		consumed = n == 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !consumed {
		// A newer code was issued between read and consume.
		return &domain.OTPResult{Verified: false, RemainingAttempts: remaining}, domain.ErrOTPNotFound
	}

	return &domain.OTPResult{Verified: true, RemainingAttempts: remaining}, nil
}

func (s *OTPServiceImpl) deliver(identifier string, channel domain.OTPChannel, purpose domain.OTPPurpose, code string) error {
	minutes := int(s.ttl.Minutes())
	message := fmt.Sprintf("Your %s code is %s. It expires in %d minutes.", purposeLabel(purpose), code, minutes)

	switch channel {
	case domain.ChannelWhatsApp:
		return s.notifier.SendWhatsApp(identifier, message)
	case domain.ChannelEmail:
		subject := fmt.Sprintf("Your %s code", purposeLabel(purpose))
		return s.notifier.SendEmail(identifier, subject, message)
	default:
		return fmt.Errorf("unsupported otp channel %q", channel)
	}
}

func purposeLabel(purpose domain.OTPPurpose) string {
	switch purpose {
	case domain.PurposePasswordReset:
		return "password reset"
	case domain.PurposeLogin:
		return "login"
	default:
		return "verification"
	}
}

func generateNumericCode(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func toInt(v interface{}) int {
	n, _ := v.(int64)
	return int(n)
}
