package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/internal/orders"
	"github.com/abiagrow/connect-backend/internal/products"
	"github.com/abiagrow/connect-backend/internal/stores"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

// Service manages post-purchase reviews and the denormalized rating
// aggregates on products and stores. Only approved reviews count.
type Service interface {
	Create(ctx context.Context, customerID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, limit, offset int) (*ReviewList, error)
	SetApproval(ctx context.Context, actorRole enums.UserRole, reviewID uuid.UUID, approved bool) (*ReviewDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, reviewID uuid.UUID) error
}

// ServiceParams collects the dependencies of the reviews service.
type ServiceParams struct {
	Repo     *Repository
	Products *products.Repository
	Stores   *stores.Repository
	Orders   *orders.Repository
}

type service struct {
	repo      *Repository
	products  *products.Repository
	stores    *stores.Repository
	orderRepo *orders.Repository
}

// NewService wires a reviews service around its repositories.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		repo:      params.Repo,
		products:  params.Products,
		stores:    params.Stores,
		orderRepo: params.Orders,
	}, nil
}

func (s *service) Create(ctx context.Context, customerID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if req.OrderID != nil {
		if err := s.validateOrderLink(ctx, customerID, product.ID, *req.OrderID); err != nil {
			return nil, err
		}
	}

	exists, err := s.repo.Exists(ctx, customerID, product.ID, req.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing review")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
	}

	delivered, err := s.orderRepo.CountDeliveredWithProduct(ctx, customerID, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check purchase history")
	}

	review := &models.Review{
		ProductID:          product.ID,
		CustomerID:         customerID,
		OrderID:            req.OrderID,
		Rating:             req.Rating,
		Title:              req.Title,
		Comment:            req.Comment,
		IsVerifiedPurchase: delivered > 0,
		IsApproved:         true,
	}
	created, err := s.repo.Create(ctx, review)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}

	if err := s.recomputeAggregates(ctx, product.ID, product.StoreID); err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, limit, offset int) (*ReviewList, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.repo.ListApprovedForProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}

	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ReviewList{Reviews: out, Total: total}, nil
}

// SetApproval moderates a review and refreshes the affected aggregates.
func (s *service) SetApproval(ctx context.Context, actorRole enums.UserRole, reviewID uuid.UUID, approved bool) (*ReviewDTO, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can moderate reviews")
	}

	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.IsApproved == approved {
		return FromModel(review), nil
	}

	if err := s.repo.SetApproval(ctx, review.ID, approved); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "moderate review")
	}

	product, err := s.products.FindByID(ctx, review.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.recomputeAggregates(ctx, product.ID, product.StoreID); err != nil {
		return nil, err
	}

	review.IsApproved = approved
	return FromModel(review), nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, reviewID uuid.UUID) error {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.CustomerID != actorID && actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "review does not belong to user")
	}

	if err := s.repo.Delete(ctx, review.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}

	product, err := s.products.FindByID(ctx, review.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return s.recomputeAggregates(ctx, product.ID, product.StoreID)
}

func (s *service) validateOrderLink(ctx context.Context, customerID, productID, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.CustomerID != customerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	if order.Status != enums.OrderStatusDelivered {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order has not been delivered")
	}
	for _, item := range order.Items {
		if item.ProductID != nil && *item.ProductID == productID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "order does not contain the product")
}

func (s *service) load(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	if reviewID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id required")
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	return review, nil
}

func (s *service) recomputeAggregates(ctx context.Context, productID, storeID uuid.UUID) error {
	rating, total, err := s.repo.ProductAggregates(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "product aggregates")
	}
	if err := s.products.UpdateAggregates(ctx, productID, rating, total); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product aggregates")
	}

	storeRating, storeTotal, err := s.repo.StoreAggregates(ctx, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store aggregates")
	}
	if err := s.stores.UpdateAggregates(ctx, storeID, storeRating, storeTotal); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store aggregates")
	}
	return nil
}
