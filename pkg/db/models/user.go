package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/enums"
)

// User represents the canonical identity entity. Email verification gates
// every cart, checkout, and registration operation downstream.
type User struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email             string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash      string         `gorm:"column:password_hash;not null"`
	FirstName         string         `gorm:"column:first_name;not null"`
	LastName          string         `gorm:"column:last_name;not null"`
	Phone             *string        `gorm:"column:phone"`
	Role              enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	EmailVerified     bool           `gorm:"column:email_verified;not null;default:false"`
	VerificationToken uuid.UUID      `gorm:"column:verification_token;type:uuid;not null"`
	IsActive          bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt       *time.Time     `gorm:"column:last_login_at"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
