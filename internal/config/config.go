package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
	Env     string `yaml:"env"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Bounded per-call timeout; timeouts count as breaker failures.
	Timeout string `yaml:"timeout"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	RefreshTTL string `yaml:"refresh_ttl"`
}

type SessionConfig struct {
	TTL           string `yaml:"ttl"`
	RememberMeTTL string `yaml:"remember_me_ttl"`
}

type OTPConfig struct {
	Length           int    `yaml:"length"`
	TTL              string `yaml:"ttl"`
	MaxAttempts      int    `yaml:"max_attempts"`
	ResendCooldown   string `yaml:"resend_cooldown"`
	MaxResendPerHour int    `yaml:"max_resend_per_hour"`
}

type RateLimitRule struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

type RateLimitConfig struct {
	Login         RateLimitRule `yaml:"login"`
	OTPSend       RateLimitRule `yaml:"otp_send"`
	PasswordReset RateLimitRule `yaml:"password_reset"`
}

type LockoutConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Duration    string `yaml:"duration"`
}

type BreakerConfig struct {
	FailureThreshold int    `yaml:"failure_threshold"`
	RecoveryTimeout  string `yaml:"recovery_timeout"`
}

type PasswordPolicyConfig struct {
	MinLength        int  `yaml:"min_length"`
	RequireUppercase bool `yaml:"require_uppercase"`
	RequireLowercase bool `yaml:"require_lowercase"`
	RequireNumber    bool `yaml:"require_number"`
	RequireSpecial   bool `yaml:"require_special"`
}

type SecurityConfig struct {
	RevokeAllOnReuse     bool   `yaml:"revoke_all_on_reuse"`
	RequireVerifiedLogin bool   `yaml:"require_verified_login"`
	ResetTokenTTL        string `yaml:"reset_token_ttl"`
	ResetURL             string `yaml:"reset_url"`
	CookieSecure         bool   `yaml:"cookie_secure"`
}

type TwilioConfig struct {
	AccountSID   string `yaml:"account_sid"`
	AuthToken    string `yaml:"auth_token"`
	WhatsAppFrom string `yaml:"whatsapp_from"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App            AppConfig            `yaml:"app"`
	Database       DatabaseConfig       `yaml:"database"`
	Redis          RedisConfig          `yaml:"redis"`
	JWT            JWTConfig            `yaml:"jwt"`
	Session        SessionConfig        `yaml:"session"`
	OTP            OTPConfig            `yaml:"otp"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Lockout        LockoutConfig        `yaml:"lockout"`
	Breaker        BreakerConfig        `yaml:"breaker"`
	PasswordPolicy PasswordPolicyConfig `yaml:"password_policy"`
	Security       SecurityConfig       `yaml:"security"`
	Twilio         TwilioConfig         `yaml:"twilio"`
	SMTP           SMTPConfig           `yaml:"smtp"`
	Casbin         CasbinConfig         `yaml:"casbin"`
}

// RateLimit is a parsed per-action rule.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

type Config struct {
	Port    string
	GinMode string
	Env     string

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTimeout  time.Duration

	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	SessionTTL           time.Duration
	SessionRememberMeTTL time.Duration

	OTPLength           int
	OTPTTL              time.Duration
	OTPMaxAttempts      int
	OTPResendCooldown   time.Duration
	OTPMaxResendPerHour int

	LoginRate         RateLimit
	OTPSendRate       RateLimit
	PasswordResetRate RateLimit

	LockoutMaxAttempts int
	LockoutDuration    time.Duration

	BreakerFailureThreshold int
	BreakerRecoveryTimeout  time.Duration

	PasswordMinLength        int
	PasswordRequireUppercase bool
	PasswordRequireLowercase bool
	PasswordRequireNumber    bool
	PasswordRequireSpecial   bool

	RevokeAllOnReuse     bool
	RequireVerifiedLogin bool
	ResetTokenTTL        time.Duration
	ResetURL             string
	CookieSecure         bool

	TwilioSID          string
	TwilioToken        string
	TwilioWhatsAppFrom string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CasbinModelPath string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml and applies environment overrides for the
// secrets that must not live in the file.
func Load() (*Config, error) {
	return LoadFile(env("CONFIG_PATH", "config/config.yml"))
}

func LoadFile(path string) (*Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var file ConfigFile
	if err := yaml.Unmarshal(bytes, &file); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	cfg := &Config{
		Port:    strconv.Itoa(file.App.Port),
		GinMode: file.App.GinMode,
		Env:     file.App.Env,

		DSN: env("DATABASE_DSN", file.Database.DSN),

		RedisAddr:     env("REDIS_ADDR", file.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", file.Redis.Password),
		RedisDB:       file.Redis.DB,

		JWTSecret: env("JWT_SECRET", file.JWT.Secret),
		JWTIssuer: file.JWT.Issuer,

		OTPLength:           file.OTP.Length,
		OTPMaxAttempts:      file.OTP.MaxAttempts,
		OTPMaxResendPerHour: file.OTP.MaxResendPerHour,

		LockoutMaxAttempts: file.Lockout.MaxAttempts,

		BreakerFailureThreshold: file.Breaker.FailureThreshold,

		PasswordMinLength:        file.PasswordPolicy.MinLength,
		PasswordRequireUppercase: file.PasswordPolicy.RequireUppercase,
		PasswordRequireLowercase: file.PasswordPolicy.RequireLowercase,
		PasswordRequireNumber:    file.PasswordPolicy.RequireNumber,
		PasswordRequireSpecial:   file.PasswordPolicy.RequireSpecial,

		RevokeAllOnReuse:     file.Security.RevokeAllOnReuse,
		RequireVerifiedLogin: file.Security.RequireVerifiedLogin,
		ResetURL:             env("RESET_URL", file.Security.ResetURL),
		CookieSecure:         file.Security.CookieSecure,

		TwilioSID:          env("TWILIO_ACCOUNT_SID", file.Twilio.AccountSID),
		TwilioToken:        env("TWILIO_AUTH_TOKEN", file.Twilio.AuthToken),
		TwilioWhatsAppFrom: file.Twilio.WhatsAppFrom,

		SMTPHost:     env("SMTP_HOST", file.SMTP.Host),
		SMTPPort:     file.SMTP.Port,
		SMTPUsername: env("SMTP_USERNAME", file.SMTP.Username),
		SMTPPassword: env("SMTP_PASSWORD", file.SMTP.Password),
		SMTPFrom:     file.SMTP.From,

		CasbinModelPath: file.Casbin.ModelPath,
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"redis timeout", file.Redis.Timeout, &cfg.RedisTimeout},
		{"JWT access TTL", file.JWT.AccessTTL, &cfg.AccessTTL},
		{"JWT refresh TTL", file.JWT.RefreshTTL, &cfg.RefreshTTL},
		{"session TTL", file.Session.TTL, &cfg.SessionTTL},
		{"session remember-me TTL", file.Session.RememberMeTTL, &cfg.SessionRememberMeTTL},
		{"OTP TTL", file.OTP.TTL, &cfg.OTPTTL},
		{"OTP resend cooldown", file.OTP.ResendCooldown, &cfg.OTPResendCooldown},
		{"login rate window", file.RateLimit.Login.Window, &cfg.LoginRate.Window},
		{"otp_send rate window", file.RateLimit.OTPSend.Window, &cfg.OTPSendRate.Window},
		{"password_reset rate window", file.RateLimit.PasswordReset.Window, &cfg.PasswordResetRate.Window},
		{"lockout duration", file.Lockout.Duration, &cfg.LockoutDuration},
		{"breaker recovery timeout", file.Breaker.RecoveryTimeout, &cfg.BreakerRecoveryTimeout},
		{"reset token TTL", file.Security.ResetTokenTTL, &cfg.ResetTokenTTL},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = v
	}

	cfg.LoginRate.Limit = file.RateLimit.Login.Limit
	cfg.OTPSendRate.Limit = file.RateLimit.OTPSend.Limit
	cfg.PasswordResetRate.Limit = file.RateLimit.PasswordReset.Limit

	return cfg, nil
}
