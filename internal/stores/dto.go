package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/db/models"
)

// StoreDTO is the public vendor profile shape.
type StoreDTO struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	Country      string    `json:"country"`
	IsVerified   bool      `json:"is_verified"`
	IsActive     bool      `json:"is_active"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateStoreRequest is the vendor payload for opening a store.
type CreateStoreRequest struct {
	Name        string  `json:"name" validate:"required"`
	Slug        string  `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Country     string  `json:"country,omitempty"`
}

// UpdateStoreRequest carries optional profile updates.
type UpdateStoreRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// FromModel converts the persisted store into its transport shape.
func FromModel(s *models.Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		ID:           s.ID,
		OwnerID:      s.OwnerID,
		Name:         s.Name,
		Slug:         s.Slug,
		Description:  s.Description,
		Email:        s.Email,
		Phone:        s.Phone,
		Address:      s.Address,
		City:         s.City,
		State:        s.State,
		Country:      s.Country,
		IsVerified:   s.IsVerified,
		IsActive:     s.IsActive,
		Rating:       s.Rating,
		TotalReviews: s.TotalReviews,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
