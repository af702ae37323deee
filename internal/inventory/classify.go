package inventory

// StockStatus buckets a stock count relative to a low-stock threshold.
type StockStatus string

const (
	// StatusOutOfStock means the counter is exactly zero.
	StatusOutOfStock StockStatus = "out_of_stock"
	// StatusLowStock means the counter is positive but at or below the threshold.
	StatusLowStock StockStatus = "low_stock"
	// StatusInStock means the counter is above the threshold.
	StatusInStock StockStatus = "in_stock"
)

// DefaultLowStockThreshold is used when a caller does not supply one.
const DefaultLowStockThreshold = 10

// Classify maps a stock count and threshold to a status bucket.
func Classify(stock, threshold int) StockStatus {
	switch {
	case stock == 0:
		return StatusOutOfStock
	case stock <= threshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}
