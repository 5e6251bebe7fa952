package models

import (
	"time"

	"github.com/google/uuid"
)

// Buyer is the agricultural-exchange purchaser profile extending a user.
type Buyer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FirstName string    `gorm:"column:first_name;not null"`
	Surname   string    `gorm:"column:surname;not null"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	Phone     string    `gorm:"column:phone;not null;uniqueIndex"`
	LGA       string    `gorm:"column:lga;not null"`
	Location  string    `gorm:"column:location;not null"`
	RegDate   time.Time `gorm:"column:reg_date;autoCreateTime"`
}
