package trade

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/trade"
)

// memoryProductRepo is a thread-safe in-memory product repository that
// honors the optimistic-locking contract of SaveStockWithLock.
type memoryProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product

	// forcedConflicts makes the next N SaveStockWithLock calls fail with a
	// concurrency conflict regardless of versions, to exercise retry paths.
	forcedConflicts int
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memoryProductRepo) put(p *catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
}

func (r *memoryProductRepo) Create(_ context.Context, product *catalog.Product) error {
	r.put(product)
	return nil
}

func (r *memoryProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

// Save mirrors the real repository: version-guarded, stock left untouched.
func (r *memoryProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != product.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *product
	cp.StockQuantity = stored.StockQuantity
	r.products[product.ID] = &cp
	return nil
}

func (r *memoryProductRepo) SaveStockWithLock(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.forcedConflicts > 0 {
		r.forcedConflicts--
		return shared.ErrConcurrencyConflict
	}

	stored, ok := r.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	// The aggregate bumps its version on mutation, so the stored row must
	// still be at the version the aggregate was loaded with.
	if stored.Version != product.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *memoryProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *memoryProductRepo) FindBelowThreshold(_ context.Context, threshold int64) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0)
	for _, p := range r.products {
		if p.Status != catalog.ProductStatusDeleted && p.StockQuantity < threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryProductRepo) stockOf(id uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].StockQuantity
}

// memoryOrderRepo is a thread-safe in-memory sales order repository
type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*trade.Order
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[uuid.UUID]*trade.Order)}
}

func (r *memoryOrderRepo) put(o *trade.Order) {
	cp := *o
	cp.Items = append([]trade.OrderItem(nil), o.Items...)
	r.orders[o.ID] = &cp
}

func (r *memoryOrderRepo) Create(_ context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(order)
	return nil
}

func (r *memoryOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	cp.Items = append([]trade.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *memoryOrderRepo) Save(_ context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return shared.ErrNotFound
	}
	r.put(order)
	return nil
}

func (r *memoryOrderRepo) FindAll(_ context.Context, filter shared.Filter) ([]*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*trade.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if status, ok := filter.Filters["status"].(string); ok && string(o.Status) != status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryOrderRepo) Count(_ context.Context, filter shared.Filter) (int64, error) {
	orders, _ := r.FindAll(context.Background(), filter)
	return int64(len(orders)), nil
}

func (r *memoryOrderRepo) GetStats(_ context.Context, _ trade.DateRange) (*trade.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &trade.OrderStats{TotalRevenue: decimal.Zero}
	for _, o := range r.orders {
		stats.TotalOrders++
		switch o.Status {
		case trade.OrderStatusDraft:
			stats.Draft++
		case trade.OrderStatusConfirmed:
			stats.Confirmed++
		case trade.OrderStatusCompleted:
			stats.Completed++
		case trade.OrderStatusCancelled:
			stats.Cancelled++
		}
		if o.Status.CountsAsFulfilled() {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.FinalAmount)
		}
	}
	return stats, nil
}

// memoryStockInRepo is a thread-safe in-memory stock-in repository
type memoryStockInRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*trade.StockInOrder
}

func newMemoryStockInRepo() *memoryStockInRepo {
	return &memoryStockInRepo{orders: make(map[uuid.UUID]*trade.StockInOrder)}
}

func (r *memoryStockInRepo) put(o *trade.StockInOrder) {
	cp := *o
	cp.Items = append([]trade.StockInItem(nil), o.Items...)
	r.orders[o.ID] = &cp
}

func (r *memoryStockInRepo) Create(_ context.Context, order *trade.StockInOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(order)
	return nil
}

func (r *memoryStockInRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.StockInOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	cp.Items = append([]trade.StockInItem(nil), o.Items...)
	return &cp, nil
}

func (r *memoryStockInRepo) Save(_ context.Context, order *trade.StockInOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return shared.ErrNotFound
	}
	r.put(order)
	return nil
}

func (r *memoryStockInRepo) FindAll(_ context.Context, filter shared.Filter) ([]*trade.StockInOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*trade.StockInOrder, 0, len(r.orders))
	for _, o := range r.orders {
		if status, ok := filter.Filters["status"].(string); ok && string(o.Status) != status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryStockInRepo) Count(_ context.Context, filter shared.Filter) (int64, error) {
	orders, _ := r.FindAll(context.Background(), filter)
	return int64(len(orders)), nil
}

func (r *memoryStockInRepo) GetStats(_ context.Context, _ trade.DateRange) (*trade.StockInStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &trade.StockInStats{TotalAmount: decimal.Zero}
	for _, o := range r.orders {
		stats.TotalOrders++
		switch o.Status {
		case trade.StockInStatusDraft:
			stats.Draft++
		case trade.StockInStatusConfirmed:
			stats.Confirmed++
			stats.TotalAmount = stats.TotalAmount.Add(o.TotalAmount)
		case trade.StockInStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

var (
	_ catalog.ProductRepository    = (*memoryProductRepo)(nil)
	_ trade.OrderRepository        = (*memoryOrderRepo)(nil)
	_ trade.StockInOrderRepository = (*memoryStockInRepo)(nil)
)
