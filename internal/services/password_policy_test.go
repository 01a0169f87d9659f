package services

import (
	"errors"
	"testing"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/config"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := NewPasswordPolicy(&config.Config{
		PasswordMinLength:        8,
		PasswordRequireUppercase: true,
		PasswordRequireLowercase: true,
		PasswordRequireNumber:    true,
		PasswordRequireSpecial:   false,
	})

	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"valid", "Str0ngPass", true},
		{"valid with special", "Str0ng!Pass", true},
		{"too short", "Ab1x", false},
		{"no uppercase", "weakpass1", false},
		{"no lowercase", "WEAKPASS1", false},
		{"no number", "WeakPassword", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.password)
			if tt.wantOK && err != nil {
				t.Errorf("Validate(%q) error = %v, want nil", tt.password, err)
			}
			if !tt.wantOK && !errors.Is(err, domain.ErrPasswordPolicy) {
				t.Errorf("Validate(%q) error = %v, want ErrPasswordPolicy", tt.password, err)
			}
		})
	}
}

func TestPasswordPolicy_SpecialRequired(t *testing.T) {
	policy := NewPasswordPolicy(&config.Config{
		PasswordMinLength:        8,
		PasswordRequireUppercase: true,
		PasswordRequireLowercase: true,
		PasswordRequireNumber:    true,
		PasswordRequireSpecial:   true,
	})

	if err := policy.Validate("Str0ngPass"); !errors.Is(err, domain.ErrPasswordPolicy) {
		t.Errorf("Validate() error = %v, want ErrPasswordPolicy", err)
	}
	if err := policy.Validate("Str0ng!Pass"); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
