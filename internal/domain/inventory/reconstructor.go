package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel is a reconstructed stock position for one product
type StockLevel struct {
	ProductID uuid.UUID
	Quantity  int64
	Value     decimal.Decimal // Quantity valued at the product's cost price
}

// QuantityAsOf replays the given movements and returns the net quantity as
// of the cutoff instant (inclusive). Movements after the cutoff are ignored;
// the input does not need to be sorted.
//
// Run against the full movement history of a product with cutoff = now, the
// result equals the live materialized counter whenever no write is in
// flight. That equivalence is the audit invariant for the whole inventory
// subsystem.
func QuantityAsOf(movements []StockMovement, cutoff time.Time) int64 {
	var total int64
	for _, m := range movements {
		if m.OccurredAt.After(cutoff) {
			continue
		}
		total += m.Signed()
	}
	return total
}

// LevelsAsOf replays movements for any number of products and returns one
// StockLevel per product seen, valued with costOf (nil values as zero).
// Purely computational: no locking, no storage access.
func LevelsAsOf(movements []StockMovement, cutoff time.Time, costOf func(productID uuid.UUID) decimal.Decimal) []StockLevel {
	quantities := make(map[uuid.UUID]int64)
	order := make([]uuid.UUID, 0)

	for _, m := range movements {
		if m.OccurredAt.After(cutoff) {
			continue
		}
		if _, seen := quantities[m.ProductID]; !seen {
			order = append(order, m.ProductID)
		}
		quantities[m.ProductID] += m.Signed()
	}

	levels := make([]StockLevel, 0, len(order))
	for _, productID := range order {
		quantity := quantities[productID]
		cost := decimal.Zero
		if costOf != nil {
			cost = costOf(productID)
		}
		levels = append(levels, StockLevel{
			ProductID: productID,
			Quantity:  quantity,
			Value:     cost.Mul(decimal.NewFromInt(quantity)),
		})
	}
	return levels
}
