package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/db/models"
)

// ReviewDTO is the transport shape of post-purchase feedback.
type ReviewDTO struct {
	ID                 uuid.UUID  `json:"id"`
	ProductID          uuid.UUID  `json:"product_id"`
	CustomerID         uuid.UUID  `json:"customer_id"`
	OrderID            *uuid.UUID `json:"order_id,omitempty"`
	Rating             int        `json:"rating"`
	Title              *string    `json:"title,omitempty"`
	Comment            *string    `json:"comment,omitempty"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase"`
	IsApproved         bool       `json:"is_approved"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateReviewRequest submits feedback for a product.
type CreateReviewRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Rating    int        `json:"rating" validate:"required,gte=1,lte=5"`
	Title     *string    `json:"title,omitempty"`
	Comment   *string    `json:"comment,omitempty"`
}

// ReviewList wraps a paginated review listing.
type ReviewList struct {
	Reviews []ReviewDTO `json:"reviews"`
	Total   int64       `json:"total"`
}

// FromModel converts a persisted review.
func FromModel(r *models.Review) *ReviewDTO {
	if r == nil {
		return nil
	}
	return &ReviewDTO{
		ID:                 r.ID,
		ProductID:          r.ProductID,
		CustomerID:         r.CustomerID,
		OrderID:            r.OrderID,
		Rating:             r.Rating,
		Title:              r.Title,
		Comment:            r.Comment,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		IsApproved:         r.IsApproved,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
