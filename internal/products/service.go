package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abiagrow/connect-backend/internal/categories"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type storeResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindBySlug(ctx context.Context, slug string) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
}

type categoryResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// Service exposes vendor catalog management plus public browse reads.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, req CreateProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error
	GetDetail(ctx context.Context, storeSlug, productSlug string) (*ProductDTO, error)
	GetByID(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListInput) (*ProductList, error)
}

// ServiceParams collects the dependencies of the products service.
type ServiceParams struct {
	Repo       *Repository
	Stores     storeResolver
	Categories categoryResolver
}

type service struct {
	repo       *Repository
	stores     storeResolver
	categories categoryResolver
}

// NewService wires a products service around its repositories.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store resolver required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category resolver required")
	}
	return &service{
		repo:       params.Repo,
		stores:     params.Stores,
		categories: params.Categories,
	}, nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, req CreateProductRequest) (*ProductDTO, error) {
	store, err := s.resolveOwnedStore(ctx, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	if req.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if req.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}

	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}

	slug := categories.Slugify(req.Slug)
	if slug == "" {
		slug = categories.Slugify(name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug required")
	}
	if _, err := s.repo.FindBySlug(ctx, store.ID, slug); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product slug")
	}

	threshold := 5
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold cannot be negative")
		}
		threshold = *req.LowStockThreshold
	}

	product := &models.Product{
		StoreID:           store.ID,
		CategoryID:        req.CategoryID,
		Name:              name,
		Slug:              slug,
		Description:       req.Description,
		ShortDescription:  req.ShortDescription,
		SKU:               sku,
		PriceCents:        req.PriceCents,
		ComparePriceCents: req.ComparePriceCents,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: threshold,
		Tags:              pq.StringArray(req.Tags),
		IsActive:          true,
		IsFeatured:        req.IsFeatured,
	}
	for _, img := range req.Images {
		if strings.TrimSpace(img.URL) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url required")
		}
		product.Images = append(product.Images, models.ProductImage{
			URL:       img.URL,
			AltText:   img.AltText,
			IsPrimary: img.IsPrimary,
			Position:  img.Position,
		})
	}
	for _, v := range req.Variants {
		if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.SKU) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant name and sku required")
		}
		if v.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant stock cannot be negative")
		}
		product.Variants = append(product.Variants, models.ProductVariant{
			Name:          v.Name,
			SKU:           v.SKU,
			PriceCents:    v.PriceCents,
			StockQuantity: v.StockQuantity,
			Size:          v.Size,
			Color:         v.Color,
			IsActive:      true,
		})
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, actorID, actorRole, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDescription != nil {
		updates["short_description"] = *req.ShortDescription
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price_cents"] = *req.PriceCents
	}
	if req.ComparePriceCents != nil {
		updates["compare_price_cents"] = *req.ComparePriceCents
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
		}
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold cannot be negative")
		}
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updates provided")
	}

	if err := s.repo.Update(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	updated, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error {
	product, err := s.loadOwned(ctx, actorID, actorRole, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

// GetDetail resolves a storefront product page and records the view.
func (s *service) GetDetail(ctx context.Context, storeSlug, productSlug string) (*ProductDTO, error) {
	store, err := s.resolveStoreBySlug(ctx, storeSlug)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindBySlug(ctx, store.ID, categories.Slugify(productSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	// best-effort counter; a failed bump never fails the page
	if err := s.repo.IncrementViews(ctx, product.ID); err == nil {
		product.Views++
	}
	return FromModel(product), nil
}

func (s *service) GetByID(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ProductList, error) {
	input.Limit = pagination.NormalizeLimit(input.Limit)
	input.Offset = pagination.NormalizeOffset(input.Offset)
	if input.Filters.PriceMinCents != nil && input.Filters.PriceMaxCents != nil &&
		*input.Filters.PriceMinCents > *input.Filters.PriceMaxCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price range is inverted")
	}

	rows, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ProductList{Products: out, Total: total}, nil
}

func (s *service) resolveOwnedStore(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole) (*models.Store, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actorRole != enums.UserRoleVendor && actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can manage products")
	}
	store, err := s.stores.FindByOwner(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor has no store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return store, nil
}

func (s *service) resolveStoreBySlug(ctx context.Context, slug string) (*models.Store, error) {
	store, err := s.stores.FindBySlug(ctx, categories.Slugify(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return store, nil
}

func (s *service) loadOwned(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if actorRole == enums.UserRoleAdmin {
		return product, nil
	}

	store, err := s.stores.FindByID(ctx, product.StoreID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	if store.OwnerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to user")
	}
	return product, nil
}
