package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/abiagrow/connect-backend/pkg/enums"
)

// Product represents the canonical vendor listing. StockQuantity is the
// source of truth for availability; stock status is derived on read.
type Product struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID           uuid.UUID        `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_products_store_slug,priority:1"`
	CategoryID        uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	Name              string           `gorm:"column:name;not null"`
	Slug              string           `gorm:"column:slug;not null;uniqueIndex:idx_products_store_slug,priority:2"`
	Description       *string          `gorm:"column:description"`
	ShortDescription  *string          `gorm:"column:short_description"`
	SKU               string           `gorm:"column:sku;not null"`
	PriceCents        int              `gorm:"column:price_cents;not null"`
	ComparePriceCents *int             `gorm:"column:compare_price_cents"`
	StockQuantity     int              `gorm:"column:stock_quantity;not null;default:0"`
	LowStockThreshold int              `gorm:"column:low_stock_threshold;not null;default:5"`
	Tags              pq.StringArray   `gorm:"column:tags;type:text[]"`
	IsActive          bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured        bool             `gorm:"column:is_featured;not null;default:false"`
	Views             int              `gorm:"column:views;not null;default:0"`
	TotalSales        int              `gorm:"column:total_sales;not null;default:0"`
	Rating            float64          `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	TotalReviews      int              `gorm:"column:total_reviews;not null;default:0"`
	Images            []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants          []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// StockStatus derives the availability label from the live quantity.
func (p Product) StockStatus() enums.StockStatus {
	return enums.StockStatusFor(p.StockQuantity, p.LowStockThreshold)
}
