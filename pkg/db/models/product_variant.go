package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is an independently stocked variation of a product.
// PriceCents overrides the product price when set.
type ProductVariant struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name          string    `gorm:"column:name;not null"`
	SKU           string    `gorm:"column:sku;not null;uniqueIndex"`
	PriceCents    *int      `gorm:"column:price_cents"`
	StockQuantity int       `gorm:"column:stock_quantity;not null;default:0"`
	Size          *string   `gorm:"column:size"`
	Color         *string   `gorm:"column:color"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// UnitPriceCents resolves the effective price against the parent product.
func (v ProductVariant) UnitPriceCents(productPriceCents int) int {
	if v.PriceCents != nil {
		return *v.PriceCents
	}
	return productPriceCents
}
