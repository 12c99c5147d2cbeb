package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopops/backend/internal/domain/shared"
)

// DateRange bounds a stats query by document creation time. A nil bound
// leaves that side open; both bounds are inclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// OrderStats aggregates sales ledger counters for reporting
type OrderStats struct {
	TotalOrders  int64           `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"` // sum of fulfilled order amounts
	Draft        int64           `json:"draft"`
	Confirmed    int64           `json:"confirmed"`
	Completed    int64           `json:"completed"`
	Cancelled    int64           `json:"cancelled"`
}

// OrderRepository defines the persistence interface for sales orders
type OrderRepository interface {
	// Create persists a new order together with its items
	Create(ctx context.Context, order *Order) error

	// FindByID retrieves an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// Save persists status and payment changes to an existing order.
	// Items are immutable and are never written by Save.
	Save(ctx context.Context, order *Order) error

	// FindAll retrieves orders matching the filter. Supported filter keys:
	// "status", "payment_status", "customer_id", "date_from", "date_to".
	FindAll(ctx context.Context, filter shared.Filter) ([]*Order, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GetStats returns aggregate counters over the sales ledger,
	// optionally bounded by a creation date range
	GetStats(ctx context.Context, period DateRange) (*OrderStats, error)
}

// StockInStats aggregates inbound ledger counters for reporting
type StockInStats struct {
	TotalOrders int64           `json:"total_orders"`
	TotalAmount decimal.Decimal `json:"total_amount"` // sum of confirmed receipt amounts
	Draft       int64           `json:"draft"`
	Confirmed   int64           `json:"confirmed"`
	Cancelled   int64           `json:"cancelled"`
}

// StockInOrderRepository defines the persistence interface for stock-in receipts
type StockInOrderRepository interface {
	// Create persists a new stock-in order together with its items
	Create(ctx context.Context, order *StockInOrder) error

	// FindByID retrieves a stock-in order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*StockInOrder, error)

	// Save persists status changes to an existing stock-in order.
	// Items are immutable and are never written by Save.
	Save(ctx context.Context, order *StockInOrder) error

	// FindAll retrieves stock-in orders matching the filter. Supported
	// filter keys: "status", "supplier_name".
	FindAll(ctx context.Context, filter shared.Filter) ([]*StockInOrder, error)

	// Count returns the number of stock-in orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GetStats returns aggregate counters over the inbound ledger,
	// optionally bounded by a creation date range
	GetStats(ctx context.Context, period DateRange) (*StockInStats, error)
}
