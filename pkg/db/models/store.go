package models

import (
	"time"

	"github.com/google/uuid"
)

// Store represents a vendor profile. Rating and TotalReviews are aggregate
// columns recomputed whenever an approved review changes.
type Store struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID      uuid.UUID `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Name         string    `gorm:"column:name;not null"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex"`
	Description  *string   `gorm:"column:description"`
	Email        *string   `gorm:"column:email"`
	Phone        *string   `gorm:"column:phone"`
	Address      *string   `gorm:"column:address"`
	City         *string   `gorm:"column:city"`
	State        *string   `gorm:"column:state"`
	Country      string    `gorm:"column:country;not null;default:'Nigeria'"`
	IsVerified   bool      `gorm:"column:is_verified;not null;default:false"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	Rating       float64   `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	TotalReviews int       `gorm:"column:total_reviews;not null;default:0"`
	Products     []Product `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
