package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID                  uint   `gorm:"primaryKey"`
	Email               string `gorm:"uniqueIndex;size:255"`
	Username            string `gorm:"uniqueIndex;size:64"`
	Phone               string `gorm:"index;size:32"`
	FullName            string `gorm:"size:255"`
	PasswordHash        string `gorm:"column:password"`
	Role                string `gorm:"index;size:32"`
	IsActive            bool   `gorm:"index"`
	EmailVerified       bool
	PhoneVerified       bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLogin           *time.Time
	CreatedAt           time.Time `gorm:"index"`
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByUsername implements domain.UserRepository
func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByIdentifier implements domain.UserRepository. The identifier may be an
// email, a username or a phone number; callers never learn which one matched.
func (r *UserRepositoryImpl) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, "email = ? OR username = ? OR phone = ?", identifier, identifier, identifier)
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where(query, args...).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// List implements domain.UserRepository. Results are newest first.
func (r *UserRepositoryImpl) List(ctx context.Context, offset, limit int) ([]*domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&DBUser{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var dbUsers []DBUser
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&dbUsers).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]*domain.User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, r.dbToDomain(&dbUsers[i]))
	}
	return users, total, nil
}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	return r.db.WithContext(ctx).Save(dbUser).Error
}

// UpdatePassword implements domain.UserRepository
func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Update("password", passwordHash).Error
}

// SetActive implements domain.UserRepository
func (r *UserRepositoryImpl) SetActive(ctx context.Context, userID uint, active bool) error {
	updates := map[string]interface{}{"is_active": active}
	if active {
		// Reactivation clears any standing lockout.
		updates["failed_login_attempts"] = 0
		updates["locked_until"] = nil
	}
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Updates(updates).Error
}

// MarkVerified implements domain.UserRepository
func (r *UserRepositoryImpl) MarkVerified(ctx context.Context, userID uint, channel domain.OTPChannel) error {
	column := "email_verified"
	if channel == domain.ChannelWhatsApp {
		column = "phone_verified"
	}
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Update(column, true).Error
}

func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:                  user.ID,
		Email:               user.Email,
		Username:            user.Username,
		Phone:               user.Phone,
		FullName:            user.FullName,
		PasswordHash:        user.PasswordHash,
		Role:                user.Role,
		IsActive:            user.IsActive,
		EmailVerified:       user.EmailVerified,
		PhoneVerified:       user.PhoneVerified,
		FailedLoginAttempts: user.FailedLoginAttempts,
		LockedUntil:         user.LockedUntil,
		LastLogin:           user.LastLogin,
	}
}

func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:                  dbUser.ID,
		Email:               dbUser.Email,
		Username:            dbUser.Username,
		Phone:               dbUser.Phone,
		FullName:            dbUser.FullName,
		PasswordHash:        dbUser.PasswordHash,
		Role:                dbUser.Role,
		IsActive:            dbUser.IsActive,
		EmailVerified:       dbUser.EmailVerified,
		PhoneVerified:       dbUser.PhoneVerified,
		FailedLoginAttempts: dbUser.FailedLoginAttempts,
		LockedUntil:         dbUser.LockedUntil,
		LastLogin:           dbUser.LastLogin,
		CreatedAt:           dbUser.CreatedAt,
		UpdatedAt:           dbUser.UpdatedAt,
	}
}
