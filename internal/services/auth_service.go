package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/config"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/breaker"
)

// refreshLockTTL bounds how long a session's refresh lock can outlive a
// crashed caller.
const refreshLockTTL = 5 * time.Second

// AuthServiceImpl orchestrates authentication flows over the repositories,
// token issuer and notification channels.
type AuthServiceImpl struct {
	users       domain.UserRepository
	sessions    domain.SessionRepository
	resetTokens domain.ResetTokenRepository
	otp         domain.OTPService
	tokens      domain.TokenService
	passwords   domain.PasswordService
	policy      *PasswordPolicy
	limiter     domain.RateLimiter
	notifier    domain.NotificationService

	client *redis.Client
	cb     *breaker.Breaker
	cfg    *config.Config
	logger zerolog.Logger
}

// NewAuthService creates the authentication orchestrator
func NewAuthService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	resetTokens domain.ResetTokenRepository,
	otp domain.OTPService,
	tokens domain.TokenService,
	passwords domain.PasswordService,
	policy *PasswordPolicy,
	limiter domain.RateLimiter,
	notifier domain.NotificationService,
	client *redis.Client,
	cb *breaker.Breaker,
	cfg *config.Config,
	logger zerolog.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		users:       users,
		sessions:    sessions,
		resetTokens: resetTokens,
		otp:         otp,
		tokens:      tokens,
		passwords:   passwords,
		policy:      policy,
		limiter:     limiter,
		notifier:    notifier,
		client:      client,
		cb:          cb,
		cfg:         cfg,
		logger:      logger,
	}
}

// Register implements domain.AuthService. New accounts start unverified; a
// verification code goes out on the email channel.
func (s *AuthServiceImpl) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	if err := s.policy.Validate(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrIdentifierTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrIdentifierTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	user := &domain.User{
		Email:        input.Email,
		Username:     input.Username,
		Phone:        input.Phone,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.otp.Send(ctx, user.Email, domain.ChannelEmail, domain.PurposeVerification); err != nil {
		// Registration stands even when the welcome code does not go out;
		// the client can ask for a resend.
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("verification otp not sent")
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return user, nil
}

// Login implements domain.AuthService
func (s *AuthServiceImpl) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	decision, err := s.limiter.Check(ctx, domain.ActionLogin, input.Identifier)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &domain.RetryAfterError{Err: domain.ErrTooManyAttempts, RetryAfter: decision.RetryAfter}
	}

	user, err := s.users.FindByIdentifier(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		return nil, &domain.RetryAfterError{
			Err:        domain.ErrAccountLocked,
			RetryAfter: time.Until(*user.LockedUntil),
		}
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if !s.passwords.Verify(user.PasswordHash, input.Password) {
		if err := s.recordFailedLogin(ctx, user); err != nil {
			s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to record login failure")
		}
		return nil, domain.ErrInvalidCredentials
	}

	if s.cfg.RequireVerifiedLogin && !user.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	now := time.Now()
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to update login state")
	}

	result, err := s.openSession(ctx, user, input.RememberMe)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("user_id", user.ID).
		Str("session_id", result.SessionID).
		Str("client_ip", input.ClientIP).
		Bool("remember_me", input.RememberMe).
		Msg("user logged in")
	return result, nil
}

func (s *AuthServiceImpl) recordFailedLogin(ctx context.Context, user *domain.User) error {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= s.cfg.LockoutMaxAttempts {
		until := time.Now().Add(s.cfg.LockoutDuration)
		user.LockedUntil = &until
		user.FailedLoginAttempts = 0
		s.logger.Warn().Uint("user_id", user.ID).Time("locked_until", until).Msg("account locked")
	}
	return s.users.Update(ctx, user)
}

func (s *AuthServiceImpl) sessionTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return s.cfg.SessionRememberMeTTL
	}
	return s.cfg.SessionTTL
}

func (s *AuthServiceImpl) openSession(ctx context.Context, user *domain.User, rememberMe bool) (*domain.AuthResult, error) {
	sessionID := uuid.NewString()

	refreshToken, refreshTokenID, err := s.tokens.GenerateRefreshToken(user.ID, user.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:             sessionID,
		UserID:         user.ID,
		RefreshTokenID: refreshTokenID,
		RememberMe:     rememberMe,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.sessionTTL(rememberMe)),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// RefreshToken implements domain.AuthService. Rotation is single use: the
// presented token's ID must match the session's current lineage, and a
// mismatch is treated as theft.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	acquired, err := s.acquireRefreshLock(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrConcurrentRefresh
	}
	defer s.releaseRefreshLock(claims.SessionID)

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionExpired
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrTokenInvalid
	}

	if session.RefreshTokenID != claims.TokenID {
		if err := s.revokeOnReuse(ctx, session); err != nil {
			s.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to revoke on reuse")
		}
		s.logger.Warn().
			Uint("user_id", session.UserID).
			Str("session_id", session.ID).
			Msg("refresh token reuse detected")
		return nil, domain.ErrTokenReuseDetected
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to delete session")
		}
		return nil, domain.ErrUserInactive
	}

	newRefreshToken, newRefreshTokenID, err := s.tokens.GenerateRefreshToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.sessions.RotateRefreshToken(ctx, session.ID, newRefreshTokenID); err != nil {
		return nil, err
	}
	// Sliding expiration: activity keeps the session alive.
	if err := s.sessions.ExtendTTL(ctx, session.ID, s.sessionTTL(session.RememberMe)); err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to extend session ttl")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func (s *AuthServiceImpl) revokeOnReuse(ctx context.Context, session *domain.Session) error {
	if s.cfg.RevokeAllOnReuse {
		_, err := s.sessions.DeleteAllForUser(ctx, session.UserID)
		return err
	}
	return s.sessions.Delete(ctx, session.ID)
}

func refreshLockKey(sessionID string) string {
	return "refreshlock:" + sessionID
}

func (s *AuthServiceImpl) acquireRefreshLock(ctx context.Context, sessionID string) (bool, error) {
	var acquired bool
	err := s.cb.Execute(ctx, func(ctx context.Context) error {
		ok, err := s.client.SetNX(ctx, refreshLockKey(sessionID), "1", refreshLockTTL).Result()
		if err != nil {
			return err
		}
		acquired = ok
		return nil
	})
	return acquired, err
}

func (s *AuthServiceImpl) releaseRefreshLock(sessionID string) {
	// Detached from the request context so the lock is released even when the
	// caller gave up.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, refreshLockKey(sessionID)).Err(); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to release refresh lock")
	}
}

// Logout implements domain.AuthService. Logging out an already-dead session
// succeeds.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// LogoutAll implements domain.AuthService
func (s *AuthServiceImpl) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	count, err := s.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Uint("user_id", userID).Int64("sessions", count).Msg("all sessions revoked")
	return count, nil
}

// ChangePassword implements domain.AuthService. A successful change revokes
// every session the user holds.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.Verify(user.PasswordHash, currentPassword) {
		return domain.ErrInvalidCredentials
	}
	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	if _, err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to revoke sessions after password change")
	}
	s.logger.Info().Uint("user_id", userID).Msg("password changed")
	return nil
}

// RequestPasswordReset implements domain.AuthService. The response never
// discloses whether the email is registered.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email, resetBaseURL string) error {
	decision, err := s.limiter.Check(ctx, domain.ActionPasswordReset, email)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &domain.RetryAfterError{Err: domain.ErrTooManyAttempts, RetryAfter: decision.RetryAfter}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.resetTokens.Create(ctx, token, user.ID, s.cfg.ResetTokenTTL); err != nil {
		return err
	}

	link := fmt.Sprintf("%s?token=%s", resetBaseURL, token)
	hours := int(s.cfg.ResetTokenTTL.Hours())
	body := fmt.Sprintf("Use the link below to reset your password. It expires in %d hours.\r\n\r\n%s", hours, link)
	if err := s.notifier.SendEmail(user.Email, "Reset your password", body); err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("reset email not sent")
		return nil
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset link sent")
	return nil
}

// VerifyResetToken implements domain.AuthService without consuming the token.
func (s *AuthServiceImpl) VerifyResetToken(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.resetTokens.Peek(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, err
	}
	return user, nil
}

// ResetPassword implements domain.AuthService. The token is single use and the
// change revokes every session.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}

	userID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	if _, err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to revoke sessions after password reset")
	}
	s.logger.Info().Uint("user_id", userID).Msg("password reset via link")
	return nil
}

// RequestPasswordResetOTP implements domain.AuthService
func (s *AuthServiceImpl) RequestPasswordResetOTP(ctx context.Context, identifier string, channel domain.OTPChannel) (*domain.OTPDelivery, error) {
	decision, err := s.limiter.Check(ctx, domain.ActionPasswordReset, identifier)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &domain.RetryAfterError{Err: domain.ErrTooManyAttempts, RetryAfter: decision.RetryAfter}
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	destination := user.Email
	if channel == domain.ChannelWhatsApp {
		destination = user.Phone
	}
	return s.otp.Send(ctx, destination, channel, domain.PurposePasswordReset)
}

// ResetPasswordOTP implements domain.AuthService
func (s *AuthServiceImpl) ResetPasswordOTP(ctx context.Context, identifier string, channel domain.OTPChannel, code, newPassword string) error {
	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}

	destination := user.Email
	if channel == domain.ChannelWhatsApp {
		destination = user.Phone
	}
	if _, err := s.otp.Verify(ctx, destination, channel, domain.PurposePasswordReset, code); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	if _, err := s.sessions.DeleteAllForUser(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to revoke sessions after password reset")
	}
	s.logger.Info().Uint("user_id", user.ID).Msg("password reset via otp")
	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
