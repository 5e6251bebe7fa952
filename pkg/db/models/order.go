package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/enums"
)

// Order is the immutable-once-placed snapshot of a checked-out cart,
// scoped to a single store. Only status, payment status, tracking data,
// and the lifecycle timestamps mutate after creation.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	StoreID       uuid.UUID           `gorm:"column:store_id;type:uuid;not null"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`

	SubtotalCents int `gorm:"column:subtotal_cents;not null"`
	ShippingCents int `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents      int `gorm:"column:tax_cents;not null;default:0"`
	DiscountCents int `gorm:"column:discount_cents;not null;default:0"`
	TotalCents    int `gorm:"column:total_cents;not null"`

	ShippingName       string  `gorm:"column:shipping_name;not null"`
	ShippingEmail      string  `gorm:"column:shipping_email;not null"`
	ShippingPhone      *string `gorm:"column:shipping_phone"`
	ShippingAddress    string  `gorm:"column:shipping_address;not null"`
	ShippingCity       string  `gorm:"column:shipping_city;not null"`
	ShippingState      string  `gorm:"column:shipping_state;not null"`
	ShippingCountry    string  `gorm:"column:shipping_country;not null;default:'Nigeria'"`
	ShippingPostalCode *string `gorm:"column:shipping_postal_code"`

	Notes          *string `gorm:"column:notes"`
	TrackingNumber *string `gorm:"column:tracking_number"`

	PaidAt      *time.Time `gorm:"column:paid_at"`
	ShippedAt   *time.Time `gorm:"column:shipped_at"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
