package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
)

// ItemDTO is a cart line priced off the live catalog at read time.
type ItemDTO struct {
	ID            uuid.UUID         `json:"id"`
	ProductID     uuid.UUID         `json:"product_id"`
	VariantID     *uuid.UUID        `json:"variant_id,omitempty"`
	ProductName   string            `json:"product_name"`
	ProductSlug   string            `json:"product_slug"`
	VariantName   *string           `json:"variant_name,omitempty"`
	StoreID       uuid.UUID         `json:"store_id"`
	Quantity      int               `json:"quantity"`
	UnitPrice     int               `json:"unit_price_cents"`
	Subtotal      int               `json:"subtotal_cents"`
	StockStatus   enums.StockStatus `json:"stock_status"`
	StockQuantity int               `json:"stock_quantity"`
	AddedAt       time.Time         `json:"added_at"`
}

// CartDTO is the customer's cart with totals computed from current prices.
type CartDTO struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Items         []ItemDTO `json:"items"`
	TotalItems    int       `json:"total_items"`
	SubtotalCents int       `json:"subtotal_cents"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AddItemRequest adds or merges a cart line.
type AddItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest replaces a line quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// FromModel converts a loaded cart, pricing every line live.
func FromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}

	items := make([]ItemDTO, 0, len(c.Items))
	totalItems := 0
	subtotal := 0
	for _, item := range c.Items {
		dto := ItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPriceCents(),
			Subtotal:  item.SubtotalCents(),
			AddedAt:   item.AddedAt,
		}
		if item.Product != nil {
			dto.ProductName = item.Product.Name
			dto.ProductSlug = item.Product.Slug
			dto.StoreID = item.Product.StoreID
			dto.StockStatus = item.Product.StockStatus()
			dto.StockQuantity = item.Product.StockQuantity
		}
		if item.Variant != nil {
			dto.VariantName = &item.Variant.Name
			dto.StockQuantity = item.Variant.StockQuantity
			if item.Product != nil {
				dto.StockStatus = enums.StockStatusFor(item.Variant.StockQuantity, item.Product.LowStockThreshold)
			}
		}
		items = append(items, dto)
		totalItems += item.Quantity
		subtotal += dto.Subtotal
	}

	return &CartDTO{
		ID:            c.ID,
		CustomerID:    c.CustomerID,
		Items:         items,
		TotalItems:    totalItems,
		SubtotalCents: subtotal,
		UpdatedAt:     c.UpdatedAt,
	}
}
