package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/config"
	httpx "github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/http"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/http/handlers"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/http/middleware"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/auth"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/breaker"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/database"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/notifications"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/infrastructure/repositories"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/services"
)

// Run wires the service and blocks until shutdown.
func Run(cfg *config.Config, logger zerolog.Logger) error {
	gin.SetMode(cfg.GinMode)

	gdb, err := database.Open(cfg.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return err
	}

	cas, err := auth.NewCasbinService(gdb, cfg.CasbinModelPath)
	if err != nil {
		return err
	}
	seedPolicies(cas, logger)

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTimeout)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Ping(pingCtx, rdb); err != nil {
		return err
	}

	// One breaker per dependency class: every Redis-backed component shares
	// the cache's health.
	redisBreaker := breaker.New(breaker.Config{
		Name:             "redis",
		FailureThreshold: cfg.BreakerFailureThreshold,
		RecoveryTimeout:  cfg.BreakerRecoveryTimeout,
		Logger:           logger,
	})

	passwordSvc := auth.NewPasswordService()
	tokenSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	notifier := notifications.NewService(
		notifications.NewTwilioWhatsAppSender(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioWhatsAppFrom, logger),
		notifications.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, logger),
	)

	userRepo := repositories.NewUserRepository(gdb)
	sessionRepo := repositories.NewSessionRepository(rdb, redisBreaker)
	resetTokenRepo := repositories.NewResetTokenRepository(rdb, redisBreaker)

	limiter := services.NewRateLimiter(rdb, redisBreaker, map[string]config.RateLimit{
		domain.ActionLogin:         cfg.LoginRate,
		domain.ActionOTPSend:       cfg.OTPSendRate,
		domain.ActionPasswordReset: cfg.PasswordResetRate,
	}, logger)
	policy := services.NewPasswordPolicy(cfg)
	otpSvc := services.NewOTPService(rdb, redisBreaker, notifier, cfg, logger)
	authSvc := services.NewAuthService(
		userRepo, sessionRepo, resetTokenRepo,
		otpSvc, tokenSvc, passwordSvc, policy, limiter, notifier,
		rdb, redisBreaker, cfg, logger,
	)

	authH := handlers.NewAuthHandlers(authSvc, cfg)
	otpH := handlers.NewOTPHandlers(otpSvc, userRepo, limiter)
	userH := handlers.NewUserHandlers(authSvc, userRepo)

	authMW := middleware.AuthMiddleware(tokenSvc, sessionRepo)
	casbinMW := middleware.NewCasbinMW(cas.E)

	router := httpx.BuildRouter(authH, otpH, userH, authMW, casbinMW, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := rdb.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close redis client")
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}
	return nil
}

// seedPolicies installs the default role policies on first boot.
func seedPolicies(cas *auth.CasbinService, logger zerolog.Logger) {
	policies, _ := cas.E.GetPolicy()
	if len(policies) > 0 {
		return
	}
	cas.E.AddPolicy(domain.RoleAdmin, "/admin/*", "(GET|POST|PATCH|DELETE)")
	cas.E.AddPolicy(domain.RoleAdmin, "/users/*", "GET")
	cas.E.AddPolicy(domain.RoleStaff, "/users/*", "GET")
	_ = cas.E.SavePolicy()
	logger.Info().Msg("casbin: seeded default policies")
}
