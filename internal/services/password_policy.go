package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/config"
)

// PasswordPolicy validates candidate passwords against the configured
// complexity rules.
type PasswordPolicy struct {
	minLength        int
	requireUppercase bool
	requireLowercase bool
	requireNumber    bool
	requireSpecial   bool
}

// NewPasswordPolicy creates a policy from configuration
func NewPasswordPolicy(cfg *config.Config) *PasswordPolicy {
	return &PasswordPolicy{
		minLength:        cfg.PasswordMinLength,
		requireUppercase: cfg.PasswordRequireUppercase,
		requireLowercase: cfg.PasswordRequireLowercase,
		requireNumber:    cfg.PasswordRequireNumber,
		requireSpecial:   cfg.PasswordRequireSpecial,
	}
}

// Validate returns domain.ErrPasswordPolicy with a human-readable reason when
// the password fails any rule.
func (p *PasswordPolicy) Validate(password string) error {
	if len(password) < p.minLength {
		return fmt.Errorf("%w: must be at least %d characters", domain.ErrPasswordPolicy, p.minLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	var missing []string
	if p.requireUppercase && !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if p.requireLowercase && !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if p.requireNumber && !hasNumber {
		missing = append(missing, "a number")
	}
	if p.requireSpecial && !hasSpecial {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: must contain %s", domain.ErrPasswordPolicy, strings.Join(missing, ", "))
	}
	return nil
}
