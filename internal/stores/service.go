package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abiagrow/connect-backend/internal/categories"
	"github.com/abiagrow/connect-backend/pkg/db"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreList wraps the paginated stores response.
type StoreList struct {
	Stores []StoreDTO `json:"stores"`
	Total  int64      `json:"total"`
}

// Service exposes vendor store management plus public reads.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, ownerRole enums.UserRole, req CreateStoreRequest) (*StoreDTO, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, storeID uuid.UUID, req UpdateStoreRequest) (*StoreDTO, error)
	GetBySlug(ctx context.Context, slug string) (*StoreDTO, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error)
	ListActive(ctx context.Context, limit, offset int) (*StoreList, error)
	Verify(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error)
}

type service struct {
	repo *Repository
}

// NewService wires a stores service around the repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, ownerRole enums.UserRole, req CreateStoreRequest) (*StoreDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if ownerRole != enums.UserRoleVendor && ownerRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can open a store")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name required")
	}

	if _, err := s.repo.FindByOwner(ctx, ownerID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already owns a store")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check store owner")
	}

	slug := categories.Slugify(req.Slug)
	if slug == "" {
		slug = categories.Slugify(name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store slug required")
	}
	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "store slug already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check store slug")
	}

	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = "Nigeria"
	}

	store := &models.Store{
		OwnerID:     ownerID,
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Country:     country,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, store)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_stores_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store slug already in use")
		}
		if db.IsUniqueViolation(err, "idx_stores_owner") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already owns a store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, storeID uuid.UUID, req UpdateStoreRequest) (*StoreDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	if store.OwnerID != actorID && actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store does not belong to user")
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updates provided")
	}

	if err := s.repo.Update(ctx, storeID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store")
	}

	updated, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload store")
	}
	return FromModel(updated), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*StoreDTO, error) {
	store, err := s.repo.FindBySlug(ctx, categories.Slugify(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) ListActive(ctx context.Context, limit, offset int) (*StoreList, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.repo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}

	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &StoreList{Stores: out, Total: total}, nil
}

// Verify flags the store as admin-verified.
func (s *service) Verify(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	if store.IsVerified {
		return FromModel(store), nil
	}

	if err := s.repo.Update(ctx, storeID, map[string]any{"is_verified": true}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify store")
	}
	store.IsVerified = true
	return FromModel(store), nil
}
