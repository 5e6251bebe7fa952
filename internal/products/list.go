package products

import (
	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/pkg/enums"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	StoreID       *uuid.UUID         `json:"store_id,omitempty"`
	CategoryID    *uuid.UUID         `json:"category_id,omitempty"`
	PriceMinCents *int               `json:"price_min_cents,omitempty"`
	PriceMaxCents *int               `json:"price_max_cents,omitempty"`
	StockStatus   *enums.StockStatus `json:"stock_status,omitempty"`
	Tag           string             `json:"tag,omitempty"`
	Featured      *bool              `json:"featured,omitempty"`
	Query         string             `json:"q,omitempty"`
	IncludeHidden bool               `json:"-"`
}

// ListInput captures pagination plus filters for the browse endpoint.
type ListInput struct {
	Filters ListFilters
	Limit   int
	Offset  int
	Sort    string
}

// ProductList wraps the paginated browse response.
type ProductList struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
}
