package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StockLedger reads the movement history derived from the stock-in and
// order ledgers. Implementations join confirmed stock-in items and
// counted-as-fulfilled order items; they never mutate anything and are safe
// to point at a read replica.
type StockLedger interface {
	// MovementsThrough returns all movements with OccurredAt <= cutoff.
	// Pass productID = uuid.Nil for all products.
	MovementsThrough(ctx context.Context, cutoff time.Time, productID uuid.UUID) ([]StockMovement, error)
}
