package inventory

import (
	"time"

	"github.com/google/uuid"
)

// StockLevelResponse represents the current stock position of a product
type StockLevelResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	ProductName   string    `json:"product_name"`
	Unit          string    `json:"unit"`
	StockQuantity int64     `json:"stock_quantity"`
	MinStock      int64     `json:"min_stock"`
	MaxStock      int64     `json:"max_stock"`
	Status        string    `json:"status"`
	StockValue    string    `json:"stock_value"`
}

// StockLevelListFilter defines filtering options for listing stock levels
type StockLevelListFilter struct {
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
	Search   string  `form:"search"`
	Status   *string `form:"status"`
}

// StockMovementResponse is one ledger movement of a product: a line of a
// confirmed receipt (IN) or of a fulfilled order (OUT)
type StockMovementResponse struct {
	ProductID  uuid.UUID `json:"product_id"`
	Direction  string    `json:"direction"`
	Quantity   int64     `json:"quantity"`
	UnitValue  string    `json:"unit_value"`
	SourceType string    `json:"source_type"`
	SourceID   uuid.UUID `json:"source_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// MovementHistoryFilter bounds and pages a product's movement history
type MovementHistoryFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// HistoricalStockResponse represents a reconstructed stock position at a
// point in the past
type HistoricalStockResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	SKU         string    `json:"sku,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int64     `json:"quantity"`
	Value       string    `json:"value"`
	Status      string    `json:"status"`
}

// HistoricalStockReport is the full reconstruction result for a cutoff date
type HistoricalStockReport struct {
	AsOf          time.Time                 `json:"as_of"`
	TotalQuantity int64                     `json:"total_quantity"`
	TotalValue    string                    `json:"total_value"`
	Items         []HistoricalStockResponse `json:"items"`
}

// CounterDiscrepancy reports a product whose live counter diverges from the
// ledger reconstruction
type CounterDiscrepancy struct {
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	LiveQuantity   int64     `json:"live_quantity"`
	LedgerQuantity int64     `json:"ledger_quantity"`
}

// CounterVerificationReport is the result of comparing every live counter
// against the ledger reconstruction at the same instant
type CounterVerificationReport struct {
	CheckedAt       time.Time            `json:"checked_at"`
	ProductsChecked int                  `json:"products_checked"`
	Discrepancies   []CounterDiscrepancy `json:"discrepancies"`
}

// Consistent reports whether every counter matched the ledger
func (r *CounterVerificationReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}
