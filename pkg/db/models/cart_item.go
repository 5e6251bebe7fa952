package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem references a live product (and optionally a variant) with a
// quantity. Unlike order lines it carries no price snapshot.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_line,priority:1"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_line,priority:2"`
	VariantID *uuid.UUID      `gorm:"column:variant_id;type:uuid;uniqueIndex:idx_cart_items_line,priority:3"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID"`
	AddedAt   time.Time       `gorm:"column:added_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// UnitPriceCents resolves the live unit price: variant override first,
// else product price. Returns 0 when associations are not loaded.
func (i CartItem) UnitPriceCents() int {
	if i.Variant != nil {
		if i.Variant.PriceCents != nil {
			return *i.Variant.PriceCents
		}
	}
	if i.Product != nil {
		return i.Product.PriceCents
	}
	return 0
}

// SubtotalCents is the live line subtotal (price x quantity).
func (i CartItem) SubtotalCents() int {
	return i.UnitPriceCents() * i.Quantity
}
