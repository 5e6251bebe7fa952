package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/pkg/db/models"
)

// Repository exposes review persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the review row.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// FindByID loads one review.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Exists reports whether the customer already reviewed the product,
// optionally scoped to one order.
func (r *Repository) Exists(ctx context.Context, customerID, productID uuid.UUID, orderID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID)
	if orderID == nil {
		query = query.Where("order_id IS NULL")
	} else {
		query = query.Where("order_id = ?", *orderID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListApprovedForProduct returns the public review page, newest first.
func (r *Repository) ListApprovedForProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]models.Review, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ? AND is_approved = ?", productID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Review
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SetApproval flips the moderation flag.
func (r *Repository) SetApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("is_approved", approved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the review row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ProductAggregates recomputes the approved-only average rating and count
// for a product.
func (r *Repository) ProductAggregates(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	var row struct {
		Average float64
		Total   int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Average, row.Total, nil
}

// StoreAggregates recomputes the approved-only average rating and count
// across every product in the store.
func (r *Repository) StoreAggregates(ctx context.Context, storeID uuid.UUID) (float64, int, error) {
	var row struct {
		Average float64
		Total   int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(reviews.rating), 0) AS average, COUNT(*) AS total").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.store_id = ? AND reviews.is_approved = ?", storeID, true).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Average, row.Total, nil
}
