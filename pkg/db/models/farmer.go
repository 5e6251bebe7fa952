package models

import (
	"time"

	"github.com/google/uuid"
)

// Farmer is the agricultural-exchange seller profile extending a user.
// Deactivation is a soft delete via IsActive.
type Farmer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FirstName string    `gorm:"column:first_name;not null"`
	Surname   string    `gorm:"column:surname;not null"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	Phone     string    `gorm:"column:phone;not null;uniqueIndex"`
	LGA       *string   `gorm:"column:lga"`
	FarmName  *string   `gorm:"column:farm_name"`
	RegDate   time.Time `gorm:"column:reg_date;autoCreateTime"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
}
