package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/inventory"
	"github.com/shopops/backend/internal/domain/shared"
)

// InventoryService answers stock questions: current positions from the
// materialized counters, historical positions by replaying the ledgers, and
// the audit that the two agree. All operations are read-only.
type InventoryService struct {
	products catalog.ProductRepository
	ledger   inventory.StockLedger
	logger   *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(products catalog.ProductRepository, ledger inventory.StockLedger, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		products: products,
		ledger:   ledger,
		logger:   logger,
	}
}

// CurrentLevels lists current stock positions from the live counters, with
// classification. The optional status filter is applied after classification.
func (s *InventoryService) CurrentLevels(ctx context.Context, filter StockLevelListFilter) ([]StockLevelResponse, int64, error) {
	domainFilter := shared.NewFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	domainFilter.OrderBy = "stock_quantity"
	domainFilter.OrderDir = "asc"
	domainFilter.Filters["exclude_status"] = string(catalog.ProductStatusDeleted)

	products, err := s.products.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.products.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockLevelResponse, 0, len(products))
	for i := range products {
		resp := toStockLevelResponse(&products[i])
		if filter.Status != nil && resp.Status != *filter.Status {
			continue
		}
		responses = append(responses, resp)
	}
	return responses, total, nil
}

// ProductLevel returns the current stock position of one product
func (s *InventoryService) ProductLevel(ctx context.Context, productID uuid.UUID) (*StockLevelResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := toStockLevelResponse(product)
	return &resp, nil
}

// LowStock lists non-deleted products classified out-of-stock or low,
// ordered by scarcity
func (s *InventoryService) LowStock(ctx context.Context) ([]StockLevelResponse, error) {
	// The SQL threshold scan over-selects against custom per-product
	// thresholds; the classifier makes the final call.
	candidates, err := s.products.FindBelowThreshold(ctx, inventory.DefaultHighThreshold)
	if err != nil {
		return nil, err
	}

	responses := make([]StockLevelResponse, 0, len(candidates))
	for i := range candidates {
		resp := toStockLevelResponse(&candidates[i])
		if resp.Status == inventory.StockStatusOutOfStock.String() || resp.Status == inventory.StockStatusLow.String() {
			responses = append(responses, resp)
		}
	}
	return responses, nil
}

// LowStockCount reports how many products are at or below their low-stock
// threshold. Feeds the monitoring gauge.
func (s *InventoryService) LowStockCount(ctx context.Context) (int64, error) {
	levels, err := s.LowStock(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(levels)), nil
}

// HistoricalLevels reconstructs stock positions as of the cutoff instant by
// replaying the inbound and outbound ledgers. Pass productID = uuid.Nil for
// all products. The live counters are never consulted.
func (s *InventoryService) HistoricalLevels(ctx context.Context, cutoff time.Time, productID uuid.UUID) (*HistoricalStockReport, error) {
	movements, err := s.ledger.MovementsThrough(ctx, cutoff, productID)
	if err != nil {
		return nil, err
	}

	// Value and label each level with current catalog data; products that
	// vanished from the catalog still appear with bare IDs.
	known := make(map[uuid.UUID]*catalog.Product)
	costOf := func(id uuid.UUID) decimal.Decimal {
		product, err := s.products.FindByID(ctx, id)
		if err != nil {
			return decimal.Zero
		}
		known[id] = product
		return product.CostPrice
	}

	levels := inventory.LevelsAsOf(movements, cutoff, costOf)

	report := &HistoricalStockReport{
		AsOf:       cutoff,
		TotalValue: decimal.Zero.String(),
		Items:      make([]HistoricalStockResponse, 0, len(levels)),
	}
	totalValue := decimal.Zero
	for _, level := range levels {
		item := HistoricalStockResponse{
			ProductID: level.ProductID,
			Quantity:  level.Quantity,
			Value:     level.Value.String(),
			Status:    inventory.Classify(level.Quantity, 0, 0).String(),
		}
		if product, ok := known[level.ProductID]; ok {
			item.SKU = product.SKU
			item.ProductName = product.Name
			item.Status = inventory.Classify(level.Quantity, product.MinStock, product.MaxStock).String()
		}
		report.Items = append(report.Items, item)
		report.TotalQuantity += level.Quantity
		totalValue = totalValue.Add(level.Value)
	}
	report.TotalValue = totalValue.String()
	return report, nil
}

// ProductHistory lists the ledger movements of one product, newest first.
// The optional date bounds are inclusive; a bare date_to covers the whole
// day. Cancelled documents never reach the ledger, so they do not appear.
func (s *InventoryService) ProductHistory(ctx context.Context, productID uuid.UUID, filter MovementHistoryFilter) ([]StockMovementResponse, int64, error) {
	if productID == uuid.Nil {
		return nil, 0, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, 0, err
	}

	cutoff := time.Now()
	if filter.DateTo != nil {
		cutoff = filter.DateTo.Add(24*time.Hour - time.Nanosecond)
	}
	movements, err := s.ledger.MovementsThrough(ctx, cutoff, productID)
	if err != nil {
		return nil, 0, err
	}

	kept := make([]inventory.StockMovement, 0, len(movements))
	for _, m := range movements {
		if filter.DateFrom != nil && m.OccurredAt.Before(*filter.DateFrom) {
			continue
		}
		kept = append(kept, m)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].OccurredAt.After(kept[j].OccurredAt)
	})

	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}
	start := page.Offset()
	if start > len(kept) {
		start = len(kept)
	}
	end := start + page.Limit()
	if end > len(kept) {
		end = len(kept)
	}

	responses := make([]StockMovementResponse, 0, end-start)
	for _, m := range kept[start:end] {
		responses = append(responses, StockMovementResponse{
			ProductID:  m.ProductID,
			Direction:  string(m.Direction),
			Quantity:   m.Quantity,
			UnitValue:  m.UnitValue.String(),
			SourceType: m.SourceType,
			SourceID:   m.SourceID,
			OccurredAt: m.OccurredAt,
		})
	}
	return responses, int64(len(kept)), nil
}

// ProductQuantityAsOf reconstructs the quantity of a single product as of
// the cutoff instant
func (s *InventoryService) ProductQuantityAsOf(ctx context.Context, cutoff time.Time, productID uuid.UUID) (int64, error) {
	if productID == uuid.Nil {
		return 0, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	movements, err := s.ledger.MovementsThrough(ctx, cutoff, productID)
	if err != nil {
		return 0, err
	}
	return inventory.QuantityAsOf(movements, cutoff), nil
}

// VerifyCounters compares every live counter against the ledger
// reconstruction at the same instant and reports the products where the two
// diverge. Run in a quiet window: writes in flight between the two reads
// show up as false discrepancies.
func (s *InventoryService) VerifyCounters(ctx context.Context) (*CounterVerificationReport, error) {
	now := time.Now()

	movements, err := s.ledger.MovementsThrough(ctx, now, uuid.Nil)
	if err != nil {
		return nil, err
	}
	ledgerQuantities := make(map[uuid.UUID]int64)
	for _, level := range inventory.LevelsAsOf(movements, now, nil) {
		ledgerQuantities[level.ProductID] = level.Quantity
	}

	filter := shared.NewFilter()
	filter.PageSize = 100
	report := &CounterVerificationReport{
		CheckedAt:     now,
		Discrepancies: make([]CounterDiscrepancy, 0),
	}

	for {
		products, err := s.products.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			break
		}
		for i := range products {
			product := &products[i]
			report.ProductsChecked++
			ledgerQty := ledgerQuantities[product.ID]
			if product.StockQuantity != ledgerQty {
				report.Discrepancies = append(report.Discrepancies, CounterDiscrepancy{
					ProductID:      product.ID,
					SKU:            product.SKU,
					LiveQuantity:   product.StockQuantity,
					LedgerQuantity: ledgerQty,
				})
			}
		}
		if len(products) < filter.PageSize {
			break
		}
		filter.Page++
	}

	if !report.Consistent() {
		s.logger.Warn("stock counter verification found discrepancies",
			zap.Int("products_checked", report.ProductsChecked),
			zap.Int("discrepancies", len(report.Discrepancies)))
	}
	return report, nil
}

func toStockLevelResponse(product *catalog.Product) StockLevelResponse {
	return StockLevelResponse{
		ProductID:     product.ID,
		SKU:           product.SKU,
		ProductName:   product.Name,
		Unit:          product.Unit,
		StockQuantity: product.StockQuantity,
		MinStock:      product.MinStock,
		MaxStock:      product.MaxStock,
		Status:        inventory.Classify(product.StockQuantity, product.MinStock, product.MaxStock).String(),
		StockValue:    product.StockValue().String(),
	}
}
