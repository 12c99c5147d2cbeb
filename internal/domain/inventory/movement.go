package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementDirection indicates whether a movement adds to or removes from stock
type MovementDirection string

const (
	// MovementIn represents stock entering inventory (confirmed stock-in item)
	MovementIn MovementDirection = "IN"
	// MovementOut represents stock leaving inventory (fulfilled order item)
	MovementOut MovementDirection = "OUT"
)

// IsValid returns true if the direction is valid
func (d MovementDirection) IsValid() bool {
	return d == MovementIn || d == MovementOut
}

// StockMovement is the ledger projection of one line item of a confirmed
// stock-in order or a fulfilled sales order. Movements are immutable facts:
// cancelling a document never removes its movements from history, because a
// document only produces movements while it is in a counted state.
type StockMovement struct {
	ProductID  uuid.UUID
	Direction  MovementDirection
	Quantity   int64
	UnitValue  decimal.Decimal // Unit cost (IN) or unit price (OUT) at the time
	SourceType string          // "STOCK_IN_ORDER" or "ORDER"
	SourceID   uuid.UUID
	OccurredAt time.Time
}

// Signed returns the quantity with its direction applied
func (m StockMovement) Signed() int64 {
	if m.Direction == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}
