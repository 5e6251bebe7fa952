package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is post-purchase feedback. IsVerifiedPurchase is set at creation
// when a delivered order links the customer and product; only approved
// reviews count toward product and store aggregates.
type Review struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID          uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_reviews_once,priority:2"`
	CustomerID         uuid.UUID  `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:idx_reviews_once,priority:1"`
	OrderID            *uuid.UUID `gorm:"column:order_id;type:uuid;uniqueIndex:idx_reviews_once,priority:3"`
	Rating             int        `gorm:"column:rating;not null"`
	Title              *string    `gorm:"column:title"`
	Comment            *string    `gorm:"column:comment"`
	IsVerifiedPurchase bool       `gorm:"column:is_verified_purchase;not null;default:false"`
	IsApproved         bool       `gorm:"column:is_approved;not null;default:true"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
