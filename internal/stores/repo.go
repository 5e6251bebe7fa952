package stores

import (
	"context"

	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes store persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a stores repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository scoped to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new store.
func (r *Repository) Create(ctx context.Context, store *models.Store) (*models.Store, error) {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindBySlug loads a store by its unique slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner loads the store belonging to the given user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// ListActive returns active stores ordered by creation time.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]models.Store, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.Store{}).Where("is_active = ?", true)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stores []models.Store
	err := base.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&stores).Error
	if err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// Update applies partial updates to the store row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateAggregates overwrites the denormalized review aggregates.
func (r *Repository) UpdateAggregates(ctx context.Context, id uuid.UUID, rating float64, totalReviews int) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":        rating,
			"total_reviews": totalReviews,
		}).Error
}
