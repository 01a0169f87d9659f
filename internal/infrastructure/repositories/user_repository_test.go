package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&DBUser{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, repo domain.UserRepository, user *domain.User) *domain.User {
	t.Helper()
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestUserRepository_FindByIdentifier(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	seedUser(t, repo, &domain.User{
		Email:        "jane@example.com",
		Username:     "jane",
		Phone:        "+911234567890",
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
		IsActive:     true,
	})

	tests := []struct {
		name       string
		identifier string
		wantErr    error
	}{
		{"by email", "jane@example.com", nil},
		{"by username", "jane", nil},
		{"by phone", "+911234567890", nil},
		{"unknown", "nobody@example.com", domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindByIdentifier(context.Background(), tt.identifier)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FindByIdentifier(%q) error = %v, want %v", tt.identifier, err, tt.wantErr)
			}
			if tt.wantErr == nil && user.Username != "jane" {
				t.Errorf("Username = %q, want jane", user.Username)
			}
		})
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	user := seedUser(t, repo, &domain.User{
		Email:        "a@example.com",
		Username:     "a",
		PasswordHash: "old-hash",
		Role:         domain.RoleCustomer,
		IsActive:     true,
	})

	if err := repo.UpdatePassword(context.Background(), user.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want new-hash", got.PasswordHash)
	}
}

func TestUserRepository_SetActiveClearsLockout(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	until := time.Now().Add(time.Hour)
	user := seedUser(t, repo, &domain.User{
		Email:               "locked@example.com",
		Username:            "locked",
		PasswordHash:        "hash",
		Role:                domain.RoleCustomer,
		IsActive:            false,
		FailedLoginAttempts: 4,
		LockedUntil:         &until,
	})

	if err := repo.SetActive(context.Background(), user.ID, true); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	got, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !got.IsActive {
		t.Error("IsActive = false, want true")
	}
	if got.FailedLoginAttempts != 0 {
		t.Errorf("FailedLoginAttempts = %d, want 0", got.FailedLoginAttempts)
	}
	if got.LockedUntil != nil {
		t.Errorf("LockedUntil = %v, want nil", got.LockedUntil)
	}
}

func TestUserRepository_MarkVerified(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	user := seedUser(t, repo, &domain.User{
		Email:        "v@example.com",
		Username:     "v",
		Phone:        "+910000000000",
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
		IsActive:     true,
	})

	if err := repo.MarkVerified(context.Background(), user.ID, domain.ChannelEmail); err != nil {
		t.Fatalf("MarkVerified(email) error = %v", err)
	}
	if err := repo.MarkVerified(context.Background(), user.ID, domain.ChannelWhatsApp); err != nil {
		t.Fatalf("MarkVerified(whatsapp) error = %v", err)
	}

	got, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !got.EmailVerified || !got.PhoneVerified {
		t.Errorf("verified flags = (%v, %v), want (true, true)", got.EmailVerified, got.PhoneVerified)
	}
}

func TestUserRepository_List(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	for _, name := range []string{"u1", "u2", "u3"} {
		seedUser(t, repo, &domain.User{
			Email:        name + "@example.com",
			Username:     name,
			PasswordHash: "hash",
			Role:         domain.RoleCustomer,
			IsActive:     true,
		})
	}

	users, total, err := repo.List(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
}
