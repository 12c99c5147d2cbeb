package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/inventory"
	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/shared/valueobject"
)

// fakeProductRepo is a minimal in-memory product repository for read paths
type fakeProductRepo struct {
	products []*catalog.Product
}

func (r *fakeProductRepo) Create(_ context.Context, product *catalog.Product) error {
	r.products = append(r.products, product)
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) Save(_ context.Context, _ *catalog.Product) error { return nil }

func (r *fakeProductRepo) SaveStockWithLock(_ context.Context, _ *catalog.Product) error { return nil }

func (r *fakeProductRepo) FindAll(_ context.Context, filter shared.Filter) ([]catalog.Product, error) {
	offset := filter.Offset()
	if offset >= len(r.products) {
		return nil, nil
	}
	end := offset + filter.Limit()
	if end > len(r.products) {
		end = len(r.products)
	}
	out := make([]catalog.Product, 0, end-offset)
	for _, p := range r.products[offset:end] {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) FindBelowThreshold(_ context.Context, threshold int64) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0)
	for _, p := range r.products {
		if p.Status != catalog.ProductStatusDeleted && p.StockQuantity < threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

// fakeStockLedger serves a fixed movement history
type fakeStockLedger struct {
	movements []inventory.StockMovement
}

func (l *fakeStockLedger) MovementsThrough(_ context.Context, cutoff time.Time, productID uuid.UUID) ([]inventory.StockMovement, error) {
	out := make([]inventory.StockMovement, 0)
	for _, m := range l.movements {
		if m.OccurredAt.After(cutoff) {
			continue
		}
		if productID != uuid.Nil && m.ProductID != productID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

var (
	_ catalog.ProductRepository = (*fakeProductRepo)(nil)
	_ inventory.StockLedger     = (*fakeStockLedger)(nil)
)

func seedProduct(t *testing.T, repo *fakeProductRepo, sku string, cost float64, stock, minStock, maxStock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), sku, "Product "+sku, "pcs")
	require.NoError(t, err)
	require.NoError(t, product.SetPrices(
		valueobject.NewMoneyVNDFromFloat(cost*1.5),
		valueobject.NewMoneyVNDFromFloat(cost),
	))
	if minStock > 0 || maxStock > 0 {
		require.NoError(t, product.SetThresholds(minStock, maxStock))
	}
	require.NoError(t, product.SetInitialStock(stock))
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func movement(productID uuid.UUID, direction inventory.MovementDirection, qty int64, at time.Time) inventory.StockMovement {
	return inventory.StockMovement{
		ProductID:  productID,
		Direction:  direction,
		Quantity:   qty,
		UnitValue:  decimal.NewFromInt(100),
		OccurredAt: at,
	}
}

func TestInventoryService_CurrentLevels(t *testing.T) {
	repo := &fakeProductRepo{}
	seedProduct(t, repo, "SKU-A", 100, 0, 0, 0)
	seedProduct(t, repo, "SKU-B", 100, 5, 0, 0)
	seedProduct(t, repo, "SKU-C", 100, 25, 0, 0)
	seedProduct(t, repo, "SKU-D", 100, 80, 0, 0)

	service := NewInventoryService(repo, &fakeStockLedger{}, nil)

	levels, total, err := service.CurrentLevels(context.Background(), StockLevelListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, levels, 4)

	statusBySKU := make(map[string]string)
	for _, level := range levels {
		statusBySKU[level.SKU] = level.Status
	}
	assert.Equal(t, "out_of_stock", statusBySKU["SKU-A"])
	assert.Equal(t, "low", statusBySKU["SKU-B"])
	assert.Equal(t, "normal", statusBySKU["SKU-C"])
	assert.Equal(t, "high", statusBySKU["SKU-D"])
}

func TestInventoryService_CurrentLevels_StatusFilter(t *testing.T) {
	repo := &fakeProductRepo{}
	seedProduct(t, repo, "SKU-A", 100, 0, 0, 0)
	seedProduct(t, repo, "SKU-B", 100, 25, 0, 0)

	service := NewInventoryService(repo, &fakeStockLedger{}, nil)

	status := "out_of_stock"
	levels, _, err := service.CurrentLevels(context.Background(), StockLevelListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "SKU-A", levels[0].SKU)
}

func TestInventoryService_LowStock(t *testing.T) {
	repo := &fakeProductRepo{}
	seedProduct(t, repo, "SKU-A", 100, 0, 0, 0)    // out of stock
	seedProduct(t, repo, "SKU-B", 100, 3, 0, 0)    // low against defaults
	seedProduct(t, repo, "SKU-C", 100, 25, 0, 0)   // normal
	seedProduct(t, repo, "SKU-D", 100, 30, 40, 60) // low against custom min

	service := NewInventoryService(repo, &fakeStockLedger{}, nil)

	levels, err := service.LowStock(context.Background())
	require.NoError(t, err)

	skus := make([]string, 0, len(levels))
	for _, level := range levels {
		skus = append(skus, level.SKU)
	}
	assert.ElementsMatch(t, []string{"SKU-A", "SKU-B", "SKU-D"}, skus)
}

func TestInventoryService_HistoricalLevels(t *testing.T) {
	repo := &fakeProductRepo{}
	product := seedProduct(t, repo, "SKU-H", 100, 0, 0, 0)

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

	ledger := &fakeStockLedger{movements: []inventory.StockMovement{
		movement(product.ID, inventory.MovementIn, 20, day1),
		movement(product.ID, inventory.MovementOut, 5, day2),
		movement(product.ID, inventory.MovementOut, 3, day3),
	}}

	service := NewInventoryService(repo, ledger, nil)

	t.Run("cutoff between movements", func(t *testing.T) {
		report, err := service.HistoricalLevels(context.Background(), day2.Add(time.Hour), uuid.Nil)
		require.NoError(t, err)
		require.Len(t, report.Items, 1)
		assert.Equal(t, int64(15), report.Items[0].Quantity)
		assert.Equal(t, "SKU-H", report.Items[0].SKU)
		assert.Equal(t, int64(15), report.TotalQuantity)
		// 15 units at cost 100
		assert.Equal(t, "1500", report.TotalValue)
	})

	t.Run("cutoff before any movement", func(t *testing.T) {
		report, err := service.HistoricalLevels(context.Background(), day1.Add(-time.Hour), uuid.Nil)
		require.NoError(t, err)
		assert.Empty(t, report.Items)
		assert.Equal(t, int64(0), report.TotalQuantity)
	})

	t.Run("cutoff after all movements", func(t *testing.T) {
		report, err := service.HistoricalLevels(context.Background(), day3.Add(time.Hour), uuid.Nil)
		require.NoError(t, err)
		require.Len(t, report.Items, 1)
		assert.Equal(t, int64(12), report.Items[0].Quantity)
	})
}

func TestInventoryService_ProductQuantityAsOf(t *testing.T) {
	repo := &fakeProductRepo{}
	product := seedProduct(t, repo, "SKU-Q", 100, 0, 0, 0)
	other := seedProduct(t, repo, "SKU-R", 100, 0, 0, 0)

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ledger := &fakeStockLedger{movements: []inventory.StockMovement{
		movement(product.ID, inventory.MovementIn, 10, day1),
		movement(product.ID, inventory.MovementOut, 4, day2),
		movement(other.ID, inventory.MovementIn, 99, day1),
	}}

	service := NewInventoryService(repo, ledger, nil)

	qty, err := service.ProductQuantityAsOf(context.Background(), day1.Add(time.Hour), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)

	qty, err = service.ProductQuantityAsOf(context.Background(), day2.Add(time.Hour), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), qty)

	_, err = service.ProductQuantityAsOf(context.Background(), day1, uuid.Nil)
	assert.Error(t, err)
}

func TestInventoryService_ProductHistory(t *testing.T) {
	repo := &fakeProductRepo{}
	product := seedProduct(t, repo, "SKU-M", 100, 0, 0, 0)
	other := seedProduct(t, repo, "SKU-N", 100, 0, 0, 0)

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

	ledger := &fakeStockLedger{movements: []inventory.StockMovement{
		movement(product.ID, inventory.MovementIn, 20, day1),
		movement(product.ID, inventory.MovementOut, 5, day2),
		movement(product.ID, inventory.MovementOut, 3, day3),
		movement(other.ID, inventory.MovementIn, 99, day1),
	}}

	service := NewInventoryService(repo, ledger, nil)

	t.Run("lists only the product's movements, newest first", func(t *testing.T) {
		movements, total, err := service.ProductHistory(context.Background(), product.ID, MovementHistoryFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, movements, 3)
		assert.Equal(t, "OUT", movements[0].Direction)
		assert.Equal(t, day3, movements[0].OccurredAt)
		assert.Equal(t, "IN", movements[2].Direction)
		assert.Equal(t, int64(20), movements[2].Quantity)
	})

	t.Run("date bounds are inclusive and date_to covers the day", func(t *testing.T) {
		from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		movements, total, err := service.ProductHistory(context.Background(), product.ID, MovementHistoryFilter{
			DateFrom: &from,
			DateTo:   &to,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, movements, 1)
		assert.Equal(t, day2, movements[0].OccurredAt)
	})

	t.Run("pages the history", func(t *testing.T) {
		movements, total, err := service.ProductHistory(context.Background(), product.ID, MovementHistoryFilter{
			Page:     2,
			PageSize: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, movements, 1)
		assert.Equal(t, day1, movements[0].OccurredAt)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, _, err := service.ProductHistory(context.Background(), uuid.New(), MovementHistoryFilter{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInventoryService_VerifyCounters(t *testing.T) {
	t.Run("consistent counters", func(t *testing.T) {
		repo := &fakeProductRepo{}
		product := seedProduct(t, repo, "SKU-V", 100, 6, 0, 0)

		ledger := &fakeStockLedger{movements: []inventory.StockMovement{
			movement(product.ID, inventory.MovementIn, 10, time.Now().Add(-2*time.Hour)),
			movement(product.ID, inventory.MovementOut, 4, time.Now().Add(-time.Hour)),
		}}

		service := NewInventoryService(repo, ledger, nil)

		report, err := service.VerifyCounters(context.Background())
		require.NoError(t, err)
		assert.True(t, report.Consistent())
		assert.Equal(t, 1, report.ProductsChecked)
	})

	t.Run("drifted counter is reported", func(t *testing.T) {
		repo := &fakeProductRepo{}
		product := seedProduct(t, repo, "SKU-W", 100, 9, 0, 0)

		ledger := &fakeStockLedger{movements: []inventory.StockMovement{
			movement(product.ID, inventory.MovementIn, 10, time.Now().Add(-2*time.Hour)),
			movement(product.ID, inventory.MovementOut, 4, time.Now().Add(-time.Hour)),
		}}

		service := NewInventoryService(repo, ledger, nil)

		report, err := service.VerifyCounters(context.Background())
		require.NoError(t, err)
		require.False(t, report.Consistent())
		require.Len(t, report.Discrepancies, 1)
		assert.Equal(t, product.ID, report.Discrepancies[0].ProductID)
		assert.Equal(t, int64(9), report.Discrepancies[0].LiveQuantity)
		assert.Equal(t, int64(6), report.Discrepancies[0].LedgerQuantity)
	})
}
