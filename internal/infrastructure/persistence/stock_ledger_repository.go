package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopops/backend/internal/domain/inventory"
	"github.com/shopops/backend/internal/domain/shared"
)

// GormStockLedger derives stock movements from the stock-in and order tables.
// There is no separate movements table: the confirmed documents ARE the
// ledger, so the projection can never drift from the documents it is built
// from. Reconstruction correctness then reduces to this one query.
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger creates a new GormStockLedger
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// movementsQuery projects line items of counted documents into movement rows.
// IN rows come from confirmed stock-in orders, OUT rows from orders in a
// fulfilled state. A document timestamps all of its movements with the moment
// it entered the counted state.
const movementsQuery = `
SELECT si.product_id,
       'IN'             AS direction,
       si.quantity,
       si.unit_cost     AS unit_value,
       'STOCK_IN_ORDER' AS source_type,
       so.id            AS source_id,
       so.confirmed_at  AS occurred_at
FROM stock_in_items si
JOIN stock_in_orders so ON so.id = si.stock_in_order_id
WHERE so.status = 'confirmed'
  AND so.confirmed_at <= @cutoff
  AND (@product_id::uuid IS NULL OR si.product_id = @product_id)

UNION ALL

SELECT oi.product_id,
       'OUT'           AS direction,
       oi.quantity,
       oi.unit_price   AS unit_value,
       'ORDER'         AS source_type,
       o.id            AS source_id,
       o.confirmed_at  AS occurred_at
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.status IN ('confirmed', 'completed')
  AND o.confirmed_at <= @cutoff
  AND (@product_id::uuid IS NULL OR oi.product_id = @product_id)

ORDER BY occurred_at ASC
`

// MovementsThrough returns all movements up to and including the cutoff,
// oldest first. Pass productID = uuid.Nil for all products.
func (r *GormStockLedger) MovementsThrough(ctx context.Context, cutoff time.Time, productID uuid.UUID) ([]inventory.StockMovement, error) {
	var productFilter *uuid.UUID
	if productID != uuid.Nil {
		productFilter = &productID
	}

	var movements []inventory.StockMovement
	err := r.db.WithContext(ctx).
		Raw(movementsQuery,
			map[string]interface{}{
				"cutoff":     cutoff,
				"product_id": productFilter,
			},
		).
		Scan(&movements).Error
	if err != nil {
		return nil, shared.NewStorageError("stock ledger projection", err)
	}
	return movements, nil
}

// Ensure GormStockLedger implements StockLedger
var _ inventory.StockLedger = (*GormStockLedger)(nil)
