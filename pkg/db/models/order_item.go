package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is the snapshot of a cart line at the moment of purchase.
// Name, SKU, and price are copied from the product and never re-synced,
// so later edits to the live listing cannot rewrite purchase history.
type OrderItem struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID     *uuid.UUID `gorm:"column:product_id;type:uuid"`
	VariantID     *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	ProductName   string     `gorm:"column:product_name;not null"`
	ProductSKU    string     `gorm:"column:product_sku;not null"`
	PriceCents    int        `gorm:"column:price_cents;not null"`
	Quantity      int        `gorm:"column:quantity;not null"`
	SubtotalCents int        `gorm:"column:subtotal_cents;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
