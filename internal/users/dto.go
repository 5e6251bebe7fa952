package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID            uuid.UUID      `json:"id"`
	Email         string         `json:"email"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Phone         *string        `json:"phone,omitempty"`
	Role          enums.UserRole `json:"role"`
	EmailVerified bool           `json:"email_verified"`
	IsActive      bool           `json:"is_active"`
	LastLoginAt   *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email             string
	PasswordHash      string
	FirstName         string
	LastName          string
	Phone             *string
	Role              enums.UserRole
	VerificationToken uuid.UUID
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}

	token := c.VerificationToken
	if token == uuid.Nil {
		token = uuid.New()
	}

	return &models.User{
		Email:             c.Email,
		PasswordHash:      c.PasswordHash,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Phone:             c.Phone,
		Role:              role,
		EmailVerified:     false,
		VerificationToken: token,
		IsActive:          true,
	}
}
