package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/internal/cart"
	"github.com/abiagrow/connect-backend/internal/orders"
	"github.com/abiagrow/connect-backend/internal/products"
	"github.com/abiagrow/connect-backend/pkg/config"
	"github.com/abiagrow/connect-backend/pkg/db"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

// Service turns a customer's cart into orders. The whole conversion runs
// in one transaction: stock decrements, order rows, and the cart wipe
// either all land or none do.
type Service interface {
	Checkout(ctx context.Context, customerID uuid.UUID, req Request) (*Result, error)
}

// ServiceParams collects the dependencies of the checkout service.
type ServiceParams struct {
	DB        *db.Client
	Carts     *cart.Repository
	Orders    *orders.Repository
	Products  *products.Repository
	Publisher orders.EventPublisher
	Config    config.CheckoutConfig
}

type service struct {
	db        *db.Client
	carts     *cart.Repository
	orders    *orders.Repository
	products  *products.Repository
	publisher orders.EventPublisher
	taxRate   decimal.Decimal
	shipping  int
}

// NewService wires a checkout service. Publisher is optional.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Config.ShippingFlatCents < 0 {
		return nil, fmt.Errorf("shipping fee cannot be negative")
	}
	taxRate, err := decimal.NewFromString(params.Config.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("parse tax rate %q: %w", params.Config.TaxRate, err)
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate cannot be negative")
	}
	return &service{
		db:        params.DB,
		carts:     params.Carts,
		orders:    params.Orders,
		products:  params.Products,
		publisher: params.Publisher,
		taxRate:   taxRate,
		shipping:  params.Config.ShippingFlatCents,
	}, nil
}

func (s *service) Checkout(ctx context.Context, customerID uuid.UUID, req Request) (*Result, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateShipping(&req); err != nil {
		return nil, err
	}

	var placed []*models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)
		prodRepo := s.products.WithTx(tx)

		loaded, err := cartRepo.FindByCustomer(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(loaded.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		byStore, storeOrder, err := s.takeStock(ctx, prodRepo, loaded.Items)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, storeID := range storeOrder {
			order, err := s.buildOrder(customerID, storeID, byStore[storeID], req, now)
			if err != nil {
				return err
			}
			created, err := orderRepo.Create(ctx, order)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
			}
			placed = append(placed, created)
		}

		for _, item := range loaded.Items {
			if err := prodRepo.IncrementTotalSales(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record sales")
			}
		}

		if err := cartRepo.Clear(ctx, loaded.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Orders: make([]orders.OrderDTO, 0, len(placed))}
	for _, order := range placed {
		result.Orders = append(result.Orders, *orders.FromModel(order))
		s.publishCreated(ctx, order)
	}
	return result, nil
}

// takeStock validates every line against the live catalog and performs the
// guarded decrements. Lines come back grouped by store, with the store
// iteration order fixed by first appearance in the cart.
func (s *service) takeStock(ctx context.Context, prodRepo *products.Repository, items []models.CartItem) (map[uuid.UUID][]models.CartItem, []uuid.UUID, error) {
	byStore := make(map[uuid.UUID][]models.CartItem)
	var storeOrder []uuid.UUID

	for _, item := range items {
		if item.Product == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart references a removed product")
		}
		if !item.Product.IsActive {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s is no longer available", item.Product.Name))
		}
		if item.VariantID != nil && item.Variant == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart references a removed variant")
		}

		var taken bool
		var err error
		if item.VariantID != nil {
			taken, err = prodRepo.DecrementVariantStock(ctx, *item.VariantID, item.Quantity)
		} else {
			taken, err = prodRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
		}
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
		}
		if !taken {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("insufficient stock for %s", item.Product.Name))
		}

		storeID := item.Product.StoreID
		if _, seen := byStore[storeID]; !seen {
			storeOrder = append(storeOrder, storeID)
		}
		byStore[storeID] = append(byStore[storeID], item)
	}
	return byStore, storeOrder, nil
}

func (s *service) buildOrder(customerID, storeID uuid.UUID, items []models.CartItem, req Request, now time.Time) (*models.Order, error) {
	number, err := newOrderNumber(now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
	}

	subtotal := 0
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		unit := item.UnitPriceCents()
		lineSubtotal := unit * item.Quantity
		subtotal += lineSubtotal

		sku := item.Product.SKU
		name := item.Product.Name
		if item.Variant != nil {
			sku = item.Variant.SKU
			name = fmt.Sprintf("%s (%s)", name, item.Variant.Name)
		}
		productID := item.ProductID
		lines = append(lines, models.OrderItem{
			ProductID:     &productID,
			VariantID:     item.VariantID,
			ProductName:   name,
			ProductSKU:    sku,
			PriceCents:    unit,
			Quantity:      item.Quantity,
			SubtotalCents: lineSubtotal,
		})
	}

	tax := int(decimal.NewFromInt(int64(subtotal)).Mul(s.taxRate).Round(0).IntPart())
	country := strings.TrimSpace(req.ShippingCountry)
	if country == "" {
		country = "Nigeria"
	}

	return &models.Order{
		OrderNumber:        number,
		CustomerID:         customerID,
		StoreID:            storeID,
		Status:             enums.OrderStatusPending,
		PaymentStatus:      enums.PaymentStatusUnpaid,
		SubtotalCents:      subtotal,
		ShippingCents:      s.shipping,
		TaxCents:           tax,
		TotalCents:         subtotal + s.shipping + tax,
		ShippingName:       req.ShippingName,
		ShippingEmail:      strings.ToLower(strings.TrimSpace(req.ShippingEmail)),
		ShippingPhone:      req.ShippingPhone,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingState:      req.ShippingState,
		ShippingCountry:    country,
		ShippingPostalCode: req.ShippingPostalCode,
		Notes:              req.Notes,
		Items:              lines,
	}, nil
}

func (s *service) publishCreated(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	s.publisher.OrderEvent(ctx, orders.Event{
		Type:          "order.created",
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		StoreID:       order.StoreID,
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus.String(),
		TotalCents:    order.TotalCents,
		OccurredAt:    time.Now().UTC(),
	})
}

func validateShipping(req *Request) error {
	for field, value := range map[string]string{
		"shipping name":    req.ShippingName,
		"shipping email":   req.ShippingEmail,
		"shipping address": req.ShippingAddress,
		"shipping city":    req.ShippingCity,
		"shipping state":   req.ShippingState,
	} {
		if strings.TrimSpace(value) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" required")
		}
	}
	return nil
}
