package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/wakaf-cms-api/internal/models"
)

// UserRepository stores admin accounts and their role grants.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (models.AdminUser, error)
	Upsert(ctx context.Context, user *models.AdminUser) error
	GrantRole(ctx context.Context, userID, role string) error
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the admin user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	return user, err
}

func (r *userRepository) Upsert(ctx context.Context, user *models.AdminUser) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	existing, err := r.FindByEmail(ctx, user.Email)
	switch {
	case err == nil:
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Model(&existing).Update("password_hash", user.PasswordHash).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(user).Error
	default:
		return err
	}
}

func (r *userRepository) GrantRole(ctx context.Context, userID, role string) error {
	grant := models.UserRole{UserID: userID, Role: strings.ToLower(strings.TrimSpace(role))}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error
}

func (r *userRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, strings.ToLower(strings.TrimSpace(role))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
