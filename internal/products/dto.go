package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
)

// ProductDTO is the transport shape for a listing. StockStatus is derived
// from the live quantity at serialization time and never stored.
type ProductDTO struct {
	ID                uuid.UUID         `json:"id"`
	StoreID           uuid.UUID         `json:"store_id"`
	CategoryID        uuid.UUID         `json:"category_id"`
	Name              string            `json:"name"`
	Slug              string            `json:"slug"`
	Description       *string           `json:"description,omitempty"`
	ShortDescription  *string           `json:"short_description,omitempty"`
	SKU               string            `json:"sku"`
	PriceCents        int               `json:"price_cents"`
	ComparePriceCents *int              `json:"compare_price_cents,omitempty"`
	StockQuantity     int               `json:"stock_quantity"`
	StockStatus       enums.StockStatus `json:"stock_status"`
	LowStockThreshold int               `json:"low_stock_threshold"`
	Tags              []string          `json:"tags,omitempty"`
	IsActive          bool              `json:"is_active"`
	IsFeatured        bool              `json:"is_featured"`
	Views             int               `json:"views"`
	TotalSales        int               `json:"total_sales"`
	Rating            float64           `json:"rating"`
	TotalReviews      int               `json:"total_reviews"`
	Images            []ImageDTO        `json:"images,omitempty"`
	Variants          []VariantDTO      `json:"variants,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ImageDTO is a gallery entry.
type ImageDTO struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	AltText   *string   `json:"alt_text,omitempty"`
	IsPrimary bool      `json:"is_primary"`
	Position  int       `json:"position"`
}

// VariantDTO exposes a stocked variation with its effective price.
type VariantDTO struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	SKU           string            `json:"sku"`
	PriceCents    int               `json:"price_cents"`
	StockQuantity int               `json:"stock_quantity"`
	StockStatus   enums.StockStatus `json:"stock_status"`
	Size          *string           `json:"size,omitempty"`
	Color         *string           `json:"color,omitempty"`
	IsActive      bool              `json:"is_active"`
}

// CreateProductRequest is the vendor payload for a new listing.
type CreateProductRequest struct {
	CategoryID        uuid.UUID              `json:"category_id" validate:"required"`
	Name              string                 `json:"name" validate:"required"`
	Slug              string                 `json:"slug,omitempty"`
	Description       *string                `json:"description,omitempty"`
	ShortDescription  *string                `json:"short_description,omitempty"`
	SKU               string                 `json:"sku" validate:"required"`
	PriceCents        int                    `json:"price_cents" validate:"gte=0"`
	ComparePriceCents *int                   `json:"compare_price_cents,omitempty"`
	StockQuantity     int                    `json:"stock_quantity" validate:"gte=0"`
	LowStockThreshold *int                   `json:"low_stock_threshold,omitempty"`
	Tags              []string               `json:"tags,omitempty"`
	IsFeatured        bool                   `json:"is_featured,omitempty"`
	Images            []CreateImageRequest   `json:"images,omitempty"`
	Variants          []CreateVariantRequest `json:"variants,omitempty"`
}

// CreateImageRequest adds a gallery entry at creation time.
type CreateImageRequest struct {
	URL       string  `json:"url" validate:"required,url"`
	AltText   *string `json:"alt_text,omitempty"`
	IsPrimary bool    `json:"is_primary,omitempty"`
	Position  int     `json:"position,omitempty"`
}

// CreateVariantRequest adds a stocked variation at creation time.
type CreateVariantRequest struct {
	Name          string  `json:"name" validate:"required"`
	SKU           string  `json:"sku" validate:"required"`
	PriceCents    *int    `json:"price_cents,omitempty"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	Size          *string `json:"size,omitempty"`
	Color         *string `json:"color,omitempty"`
}

// UpdateProductRequest carries optional listing updates.
type UpdateProductRequest struct {
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	Name              *string    `json:"name,omitempty"`
	Description       *string    `json:"description,omitempty"`
	ShortDescription  *string    `json:"short_description,omitempty"`
	PriceCents        *int       `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	ComparePriceCents *int       `json:"compare_price_cents,omitempty"`
	StockQuantity     *int       `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *int       `json:"low_stock_threshold,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	IsActive          *bool      `json:"is_active,omitempty"`
	IsFeatured        *bool      `json:"is_featured,omitempty"`
}

// FromModel converts the persisted product, deriving stock status.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	images := make([]ImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ImageDTO{
			ID:        img.ID,
			URL:       img.URL,
			AltText:   img.AltText,
			IsPrimary: img.IsPrimary,
			Position:  img.Position,
		})
	}

	variants := make([]VariantDTO, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, VariantDTO{
			ID:            v.ID,
			Name:          v.Name,
			SKU:           v.SKU,
			PriceCents:    v.UnitPriceCents(p.PriceCents),
			StockQuantity: v.StockQuantity,
			StockStatus:   enums.StockStatusFor(v.StockQuantity, p.LowStockThreshold),
			Size:          v.Size,
			Color:         v.Color,
			IsActive:      v.IsActive,
		})
	}

	return &ProductDTO{
		ID:                p.ID,
		StoreID:           p.StoreID,
		CategoryID:        p.CategoryID,
		Name:              p.Name,
		Slug:              p.Slug,
		Description:       p.Description,
		ShortDescription:  p.ShortDescription,
		SKU:               p.SKU,
		PriceCents:        p.PriceCents,
		ComparePriceCents: p.ComparePriceCents,
		StockQuantity:     p.StockQuantity,
		StockStatus:       p.StockStatus(),
		LowStockThreshold: p.LowStockThreshold,
		Tags:              append([]string(nil), p.Tags...),
		IsActive:          p.IsActive,
		IsFeatured:        p.IsFeatured,
		Views:             p.Views,
		TotalSales:        p.TotalSales,
		Rating:            p.Rating,
		TotalReviews:      p.TotalReviews,
		Images:            images,
		Variants:          variants,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
