package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/internal/products"
	"github.com/abiagrow/connect-backend/pkg/db"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/logger"
)

// Event describes an order lifecycle change for downstream consumers.
type Event struct {
	Type          string    `json:"type"`
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	StoreID       uuid.UUID `json:"store_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalCents    int       `json:"total_cents"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher fans lifecycle events out to interested consumers.
// Publishing is best-effort; implementations must not block the request.
type EventPublisher interface {
	OrderEvent(ctx context.Context, event Event)
}

type storeResolver interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
}

// Service manages orders after checkout: reads for customers and vendors
// plus the fulfillment and payment state machines.
type Service interface {
	Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	GetByNumber(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, number string) (*OrderDTO, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) (*OrderList, error)
	ListForStore(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, limit, offset int) (*OrderList, error)

	MarkPaid(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	Ship(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID, req ShipRequest) (*OrderDTO, error)
	Deliver(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	BulkCancel(ctx context.Context, orderIDs []uuid.UUID) error
}

// ServiceParams collects the dependencies of the orders service.
type ServiceParams struct {
	DB        *db.Client
	Repo      *Repository
	Products  *products.Repository
	Stores    storeResolver
	Publisher EventPublisher
	Logger    *logger.Logger
}

type service struct {
	db        *db.Client
	repo      *Repository
	products  *products.Repository
	stores    storeResolver
	publisher EventPublisher
	logg      *logger.Logger
}

// NewService wires an orders service around its dependencies. Publisher
// is optional; everything else is required.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store resolver required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:        params.DB,
		repo:      params.Repo,
		products:  params.Products,
		stores:    params.Stores,
		publisher: params.Publisher,
		logg:      params.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actorID, actorRole, order); err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) GetByNumber(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, number string) (*OrderDTO, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if err := s.authorizeRead(ctx, actorID, actorRole, order); err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) (*OrderList, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	limit, offset = clampPage(limit, offset)

	rows, total, err := s.repo.List(ctx, ListFilters{CustomerID: &customerID}, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toList(rows, total), nil
}

func (s *service) ListForStore(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, limit, offset int) (*OrderList, error) {
	if actorRole != enums.UserRoleVendor && actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can list store orders")
	}
	store, err := s.stores.FindByOwner(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor has no store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	limit, offset = clampPage(limit, offset)

	rows, total, err := s.repo.List(ctx, ListFilters{StoreID: &store.ID}, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toList(rows, total), nil
}

// MarkPaid confirms payment: unpaid -> paid, stamps paid_at once, and
// advances fulfillment from pending to processing.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		// already paid; idempotent no-op, paid_at stays as stamped
		return FromModel(order), nil
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
	}
	if !CanTransition(order.Status, enums.OrderStatusProcessing) {
		return nil, transitionError(order.Status, enums.OrderStatusProcessing)
	}

	updates := map[string]any{
		"payment_status": enums.PaymentStatusPaid,
		"status":         enums.OrderStatusProcessing,
	}
	if order.PaidAt == nil {
		updates["paid_at"] = time.Now().UTC()
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order paid")
	}

	return s.reloadAndPublish(ctx, order.ID, "order.paid")
}

// Ship dispatches a processing order with its tracking number.
func (s *service) Ship(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID, req ShipRequest) (*OrderDTO, error) {
	tracking := strings.TrimSpace(req.TrackingNumber)
	if tracking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeFulfillment(ctx, actorID, actorRole, order); err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusShipped {
		// no-op: shipped_at and tracking number stay as first stamped
		return FromModel(order), nil
	}
	if !CanTransition(order.Status, enums.OrderStatusShipped) {
		return nil, transitionError(order.Status, enums.OrderStatusShipped)
	}

	updates := map[string]any{
		"status":          enums.OrderStatusShipped,
		"tracking_number": tracking,
	}
	if order.ShippedAt == nil {
		updates["shipped_at"] = time.Now().UTC()
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ship order")
	}

	return s.reloadAndPublish(ctx, order.ID, "order.shipped")
}

// Deliver completes fulfillment of a shipped order.
func (s *service) Deliver(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeFulfillment(ctx, actorID, actorRole, order); err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusDelivered {
		return FromModel(order), nil
	}
	if !CanTransition(order.Status, enums.OrderStatusDelivered) {
		return nil, transitionError(order.Status, enums.OrderStatusDelivered)
	}

	updates := map[string]any{"status": enums.OrderStatusDelivered}
	if order.DeliveredAt == nil {
		updates["delivered_at"] = time.Now().UTC()
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deliver order")
	}

	return s.reloadAndPublish(ctx, order.ID, "order.delivered")
}

// Cancel aborts an undispatched order, returning every line's quantity to
// the live catalog in the same transaction. A paid order is refunded.
func (s *service) Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != actorID {
		if err := s.authorizeFulfillment(ctx, actorID, actorRole, order); err != nil {
			return nil, err
		}
	}
	if order.Status == enums.OrderStatusCancelled {
		// no-op: stock was already restored on the first cancel
		return FromModel(order), nil
	}
	if !CanTransition(order.Status, enums.OrderStatusCancelled) {
		return nil, transitionError(order.Status, enums.OrderStatusCancelled)
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.cancelInTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndPublish(ctx, order.ID, "order.cancelled")
}

// BulkCancel cancels a batch of orders as admin, collecting per-order
// failures instead of stopping at the first one.
func (s *service) BulkCancel(ctx context.Context, orderIDs []uuid.UUID) error {
	if len(orderIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no order ids provided")
	}

	var errs error
	for _, id := range orderIDs {
		order, err := s.load(ctx, id)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		if order.Status == enums.OrderStatusCancelled {
			continue
		}
		if !CanTransition(order.Status, enums.OrderStatusCancelled) {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", id, transitionError(order.Status, enums.OrderStatusCancelled)))
			continue
		}
		err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
			return s.cancelInTx(ctx, tx, order)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		s.publish(ctx, order.ID, "order.cancelled")
	}
	return errs
}

func (s *service) cancelInTx(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	repo := s.repo.WithTx(tx)
	prodRepo := s.products.WithTx(tx)

	updates := map[string]any{"status": enums.OrderStatusCancelled}
	if order.CancelledAt == nil {
		updates["cancelled_at"] = time.Now().UTC()
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		updates["payment_status"] = enums.PaymentStatusRefunded
	}
	if err := repo.Update(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
	}

	// Mirror the checkout decrement: a variant line took stock from the
	// variant only, so restore only the variant; never touch both rows.
	for _, item := range order.Items {
		if item.VariantID != nil {
			if err := prodRepo.RestoreVariantStock(ctx, *item.VariantID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore variant stock")
			}
		} else if item.ProductID != nil {
			if err := prodRepo.RestoreStock(ctx, *item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore product stock")
			}
		}
	}
	return nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) authorizeRead(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, order *models.Order) error {
	if actorRole == enums.UserRoleAdmin || order.CustomerID == actorID {
		return nil
	}
	if actorRole == enums.UserRoleVendor {
		store, err := s.stores.FindByOwner(ctx, actorID)
		if err == nil && store.ID == order.StoreID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
}

func (s *service) authorizeFulfillment(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, order *models.Order) error {
	if actorRole == enums.UserRoleAdmin {
		return nil
	}
	if actorRole != enums.UserRoleVendor {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can manage fulfillment")
	}
	store, err := s.stores.FindByOwner(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "vendor has no store")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	if store.ID != order.StoreID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to store")
	}
	return nil
}

func (s *service) reloadAndPublish(ctx context.Context, orderID uuid.UUID, eventType string) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}
	s.publishOrder(ctx, order, eventType)
	return FromModel(order), nil
}

func (s *service) publish(ctx context.Context, orderID uuid.UUID, eventType string) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("order event reload failed: %v", err))
		return
	}
	s.publishOrder(ctx, order, eventType)
}

func (s *service) publishOrder(ctx context.Context, order *models.Order, eventType string) {
	if s.publisher == nil {
		return
	}
	s.publisher.OrderEvent(ctx, Event{
		Type:          eventType,
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

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toList(rows []models.Order, total int64) *OrderList {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &OrderList{Orders: out, Total: total}
}
