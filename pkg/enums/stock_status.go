package enums

// StockStatus is the derived availability label for a product or variant.
// It is computed from quantity and threshold on read and never persisted.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// StockStatusFor derives the label from the current quantity and low-stock threshold.
func StockStatusFor(quantity, lowStockThreshold int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= lowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
