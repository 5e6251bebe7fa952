package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
)

// ItemDTO is a purchased line frozen at checkout time.
type ItemDTO struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     *uuid.UUID `json:"product_id,omitempty"`
	VariantID     *uuid.UUID `json:"variant_id,omitempty"`
	ProductName   string     `json:"product_name"`
	ProductSKU    string     `json:"product_sku"`
	PriceCents    int        `json:"price_cents"`
	Quantity      int        `json:"quantity"`
	SubtotalCents int        `json:"subtotal_cents"`
}

// OrderDTO is the transport shape of a placed order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	StoreID       uuid.UUID           `json:"store_id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`

	SubtotalCents int `json:"subtotal_cents"`
	ShippingCents int `json:"shipping_cents"`
	TaxCents      int `json:"tax_cents"`
	DiscountCents int `json:"discount_cents"`
	TotalCents    int `json:"total_cents"`

	ShippingName       string  `json:"shipping_name"`
	ShippingEmail      string  `json:"shipping_email"`
	ShippingPhone      *string `json:"shipping_phone,omitempty"`
	ShippingAddress    string  `json:"shipping_address"`
	ShippingCity       string  `json:"shipping_city"`
	ShippingState      string  `json:"shipping_state"`
	ShippingCountry    string  `json:"shipping_country"`
	ShippingPostalCode *string `json:"shipping_postal_code,omitempty"`

	Notes          *string `json:"notes,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Items     []ItemDTO `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderList wraps a paginated order history response.
type OrderList struct {
	Orders []OrderDTO `json:"orders"`
	Total  int64      `json:"total"`
}

// ShipRequest attaches tracking data when the vendor dispatches.
type ShipRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required"`
}

// FromModel converts a persisted order with its line snapshots.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]ItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemDTO{
			ID:            item.ID,
			ProductID:     item.ProductID,
			VariantID:     item.VariantID,
			ProductName:   item.ProductName,
			ProductSKU:    item.ProductSKU,
			PriceCents:    item.PriceCents,
			Quantity:      item.Quantity,
			SubtotalCents: item.SubtotalCents,
		})
	}

	return &OrderDTO{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerID,
		StoreID:            o.StoreID,
		Status:             o.Status,
		PaymentStatus:      o.PaymentStatus,
		SubtotalCents:      o.SubtotalCents,
		ShippingCents:      o.ShippingCents,
		TaxCents:           o.TaxCents,
		DiscountCents:      o.DiscountCents,
		TotalCents:         o.TotalCents,
		ShippingName:       o.ShippingName,
		ShippingEmail:      o.ShippingEmail,
		ShippingPhone:      o.ShippingPhone,
		ShippingAddress:    o.ShippingAddress,
		ShippingCity:       o.ShippingCity,
		ShippingState:      o.ShippingState,
		ShippingCountry:    o.ShippingCountry,
		ShippingPostalCode: o.ShippingPostalCode,
		Notes:              o.Notes,
		TrackingNumber:     o.TrackingNumber,
		PaidAt:             o.PaidAt,
		ShippedAt:          o.ShippedAt,
		DeliveredAt:        o.DeliveredAt,
		CancelledAt:        o.CancelledAt,
		Items:              items,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}
