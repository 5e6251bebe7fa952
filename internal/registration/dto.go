package registration

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/db/models"
)

// FarmerDTO is the exchange seller profile.
type FarmerDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	LGA       *string   `json:"lga,omitempty"`
	FarmName  *string   `json:"farm_name,omitempty"`
	RegDate   time.Time `json:"reg_date"`
	IsActive  bool      `json:"is_active"`
}

// BuyerDTO is the exchange purchaser profile.
type BuyerDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	LGA       string    `json:"lga"`
	Location  string    `json:"location"`
	RegDate   time.Time `json:"reg_date"`
}

// RegisterFarmerRequest opens a farmer profile for the current user.
type RegisterFarmerRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	Surname   string  `json:"surname" validate:"required"`
	Phone     string  `json:"phone" validate:"required"`
	LGA       *string `json:"lga,omitempty"`
	FarmName  *string `json:"farm_name,omitempty"`
}

// RegisterBuyerRequest opens a buyer profile for the current user.
type RegisterBuyerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	LGA       string `json:"lga" validate:"required"`
	Location  string `json:"location" validate:"required"`
}

// UpdateFarmerRequest carries optional farmer profile updates.
type UpdateFarmerRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	Surname   *string `json:"surname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	LGA       *string `json:"lga,omitempty"`
	FarmName  *string `json:"farm_name,omitempty"`
}

// UpdateBuyerRequest carries optional buyer profile updates.
type UpdateBuyerRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	Surname   *string `json:"surname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	LGA       *string `json:"lga,omitempty"`
	Location  *string `json:"location,omitempty"`
}

func farmerFromModel(f *models.Farmer) *FarmerDTO {
	if f == nil {
		return nil
	}
	return &FarmerDTO{
		ID:        f.ID,
		UserID:    f.UserID,
		FirstName: f.FirstName,
		Surname:   f.Surname,
		Email:     f.Email,
		Phone:     f.Phone,
		LGA:       f.LGA,
		FarmName:  f.FarmName,
		RegDate:   f.RegDate,
		IsActive:  f.IsActive,
	}
}

func buyerFromModel(b *models.Buyer) *BuyerDTO {
	if b == nil {
		return nil
	}
	return &BuyerDTO{
		ID:        b.ID,
		UserID:    b.UserID,
		FirstName: b.FirstName,
		Surname:   b.Surname,
		Email:     b.Email,
		Phone:     b.Phone,
		LGA:       b.LGA,
		Location:  b.Location,
		RegDate:   b.RegDate,
	}
}
