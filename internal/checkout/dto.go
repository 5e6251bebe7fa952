package checkout

import (
	"github.com/abiagrow/connect-backend/internal/orders"
)

// Request carries the shipping destination for a checkout. The cart
// itself is resolved server-side from the authenticated customer.
type Request struct {
	ShippingName       string  `json:"shipping_name" validate:"required"`
	ShippingEmail      string  `json:"shipping_email" validate:"required,email"`
	ShippingPhone      *string `json:"shipping_phone,omitempty"`
	ShippingAddress    string  `json:"shipping_address" validate:"required"`
	ShippingCity       string  `json:"shipping_city" validate:"required"`
	ShippingState      string  `json:"shipping_state" validate:"required"`
	ShippingCountry    string  `json:"shipping_country,omitempty"`
	ShippingPostalCode *string `json:"shipping_postal_code,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// Result returns every order the checkout produced, one per store
// represented in the cart.
type Result struct {
	Orders []orders.OrderDTO `json:"orders"`
}
