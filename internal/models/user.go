package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleAdmin is the only privileged role the CMS knows about.
const RoleAdmin = "admin"

// AdminUser is an account allowed to sign in to the admin panel.
type AdminUser struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns an identifier when missing.
func (u *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserRole grants a role to a user.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_role" json:"user_id"`
	Role      string    `gorm:"size:32;not null;uniqueIndex:idx_user_role" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every model the service migrates.
func All() []interface{} {
	return []interface{}{
		&AdminUser{},
		&UserRole{},
		&ActivityLog{},
		&ProfileSection{},
		&Facility{},
		&Program{},
		&Article{},
		&Announcement{},
		&Documentation{},
	}
}
