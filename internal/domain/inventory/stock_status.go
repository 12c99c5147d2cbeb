package inventory

// StockStatus is the classification label for a stock level
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusLow        StockStatus = "low"
	StockStatusNormal     StockStatus = "normal"
	StockStatusHigh       StockStatus = "high"
)

// Default thresholds applied when a product has no thresholds configured
const (
	DefaultLowThreshold  int64 = 10
	DefaultHighThreshold int64 = 50
)

// String returns the string representation of StockStatus
func (s StockStatus) String() string {
	return string(s)
}

// Classify maps a quantity and per-product thresholds to a status label.
// A threshold of zero (or below) means "not configured" and falls back to
// the defaults. The live inventory view and the point-in-time view both go
// through this function, so dashboards and historical reports always agree.
//
// Classify is monotonic: for fixed thresholds, increasing the quantity never
// yields a scarcer label.
func Classify(quantity, minStock, maxStock int64) StockStatus {
	low := minStock
	if low <= 0 {
		low = DefaultLowThreshold
	}
	high := maxStock
	if high <= 0 {
		high = DefaultHighThreshold
	}
	if high < low {
		high = low
	}

	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity < low:
		return StockStatusLow
	case quantity >= high:
		return StockStatusHigh
	default:
		return StockStatusNormal
	}
}
