package registration

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/pkg/db/models"
)

// Repository exposes farmer and buyer profile persistence.
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

func (r *Repository) CreateFarmer(ctx context.Context, farmer *models.Farmer) (*models.Farmer, error) {
	if err := r.db.WithContext(ctx).Create(farmer).Error; err != nil {
		return nil, err
	}
	return farmer, nil
}

func (r *Repository) FindFarmerByUser(ctx context.Context, userID uuid.UUID) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := r.db.WithContext(ctx).First(&farmer, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &farmer, nil
}

// FarmerPhoneTaken reports whether another farmer already uses the phone.
func (r *Repository) FarmerPhoneTaken(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Farmer{}).
		Where("phone = ? AND id <> ?", phone, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) UpdateFarmer(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Farmer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *Repository) CreateBuyer(ctx context.Context, buyer *models.Buyer) (*models.Buyer, error) {
	if err := r.db.WithContext(ctx).Create(buyer).Error; err != nil {
		return nil, err
	}
	return buyer, nil
}

func (r *Repository) FindBuyerByUser(ctx context.Context, userID uuid.UUID) (*models.Buyer, error) {
	var buyer models.Buyer
	if err := r.db.WithContext(ctx).First(&buyer, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &buyer, nil
}

// BuyerPhoneTaken reports whether another buyer already uses the phone.
func (r *Repository) BuyerPhoneTaken(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Buyer{}).
		Where("phone = ? AND id <> ?", phone, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) UpdateBuyer(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Buyer{}).
		Where("id = ?", id).
		Updates(updates).Error
}
