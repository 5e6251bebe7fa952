package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/pkg/db"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

// Service manages the customer's cart. Line mutations validate against the
// live catalog; totals are always computed at read time.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*CartDTO, error)
	UpdateItem(ctx context.Context, customerID, itemID uuid.UUID, req UpdateItemRequest) (*CartDTO, error)
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

// ServiceParams collects the dependencies of the cart service.
type ServiceParams struct {
	DB       *db.Client
	Repo     *Repository
	Products productLoader
}

type service struct {
	db       *db.Client
	repo     *Repository
	products productLoader
}

// NewService wires a cart service around its repositories.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{db: params.DB, repo: params.Repo, products: params.Products}, nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*CartDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return FromModel(cart), nil
}

func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*CartDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, available, err := s.resolveLine(ctx, req.ProductID, req.VariantID)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindLine(ctx, cart.ID, product.ID, req.VariantID)
		switch {
		case err == nil:
			merged := existing.Quantity + req.Quantity
			if merged > available {
				return pkgerrors.New(pkgerrors.CodeValidation, "requested quantity exceeds available stock")
			}
			if err := repo.UpdateItemQuantity(ctx, existing.ID, merged); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge cart line")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if req.Quantity > available {
				return pkgerrors.New(pkgerrors.CodeValidation, "requested quantity exceeds available stock")
			}
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				VariantID: req.VariantID,
				Quantity:  req.Quantity,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart line")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find cart line")
		}
		return repo.Touch(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) UpdateItem(ctx context.Context, customerID, itemID uuid.UUID, req UpdateItemRequest) (*CartDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}

	_, available, err := s.resolveLine(ctx, item.ProductID, item.VariantID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested quantity exceeds available stock")
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, req.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
	}
	if err := s.repo.Touch(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "touch cart")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	if err := s.repo.DeleteItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart line")
	}
	if err := s.repo.Touch(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "touch cart")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// resolveLine validates the product/variant pair against the live catalog
// and reports the purchasable quantity.
func (s *service) resolveLine(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*models.Product, int, error) {
	if productID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	if variantID == nil {
		return product, product.StockQuantity, nil
	}

	variant, err := s.products.FindVariant(ctx, *variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variant")
	}
	if variant.ProductID != product.ID {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
	}
	if !variant.IsActive {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "variant is not available")
	}
	return product, variant.StockQuantity, nil
}

func (s *service) reload(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	return FromModel(cart), nil
}
