package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics helper is constructed without a meter
var ErrMeterNil = errors.New("NewStoreMetrics: meter cannot be nil")

// StoreMetrics tracks the health of the order and inventory flows: document
// throughput, lost optimistic-lock races, and how many products sit below
// their low-stock threshold.
type StoreMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	ordersCreated    *Counter
	ordersConfirmed  *Counter
	ordersCancelled  *Counter
	stockInConfirmed *Counter
	stockConflicts   *Counter

	lowStockCount *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	lowStockProvider LowStockProvider
}

// LowStockProvider reports how many products are currently below their
// low-stock threshold. The interface keeps the telemetry layer from
// depending on the inventory application package directly.
type LowStockProvider interface {
	LowStockCount(ctx context.Context) (int64, error)
}

// StoreMetricsConfig holds configuration for store metrics.
type StoreMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	LowStockProvider LowStockProvider
}

// NewStoreMetrics creates a new StoreMetrics instance.
func NewStoreMetrics(cfg StoreMetricsConfig) (*StoreMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &StoreMetrics{
		meter:            cfg.Meter,
		logger:           logger,
		stopChan:         make(chan struct{}),
		lowStockProvider: cfg.LowStockProvider,
	}

	var err error

	sm.ordersCreated, err = NewCounter(cfg.Meter,
		"shopops_orders_created_total",
		"Total number of sales orders created",
		"{orders}")
	if err != nil {
		return nil, err
	}

	sm.ordersConfirmed, err = NewCounter(cfg.Meter,
		"shopops_orders_confirmed_total",
		"Total number of sales orders confirmed (stock deducted)",
		"{orders}")
	if err != nil {
		return nil, err
	}

	sm.ordersCancelled, err = NewCounter(cfg.Meter,
		"shopops_orders_cancelled_total",
		"Total number of sales orders cancelled",
		"{orders}")
	if err != nil {
		return nil, err
	}

	sm.stockInConfirmed, err = NewCounter(cfg.Meter,
		"shopops_stock_in_confirmed_total",
		"Total number of stock-in receipts confirmed",
		"{receipts}")
	if err != nil {
		return nil, err
	}

	sm.stockConflicts, err = NewCounter(cfg.Meter,
		"shopops_stock_conflicts_total",
		"Total number of lost optimistic-lock races on the stock counter",
		"{conflicts}")
	if err != nil {
		return nil, err
	}

	sm.lowStockCount, err = NewGauge(cfg.Meter,
		"shopops_low_stock_count",
		"Number of products at or below their low-stock threshold",
		"{products}")
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordOrderCreated records a sales order creation
func (sm *StoreMetrics) RecordOrderCreated(ctx context.Context) {
	sm.ordersCreated.Inc(ctx)
}

// RecordOrderConfirmed records a successful order confirmation
func (sm *StoreMetrics) RecordOrderConfirmed(ctx context.Context) {
	sm.ordersConfirmed.Inc(ctx)
}

// RecordOrderCancelled records an order cancellation
func (sm *StoreMetrics) RecordOrderCancelled(ctx context.Context) {
	sm.ordersCancelled.Inc(ctx)
}

// RecordStockInConfirmed records a confirmed stock-in receipt
func (sm *StoreMetrics) RecordStockInConfirmed(ctx context.Context) {
	sm.stockInConfirmed.Inc(ctx)
}

// RecordStockConflict records a lost optimistic-lock race. A steady stream of
// these on one product means its contention outgrew the retry budget.
func (sm *StoreMetrics) RecordStockConflict(ctx context.Context) {
	sm.stockConflicts.Inc(ctx)
}

// StartPeriodicCollection starts a background goroutine that refreshes the
// low-stock gauge at the given interval. Safe to call once; later calls are
// ignored.
func (sm *StoreMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if sm.lowStockProvider == nil {
		sm.logger.Debug("no low stock provider configured, skipping periodic collection")
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	sm.collectOnce.Do(func() {
		go sm.runPeriodicCollection(ctx, interval)
	})
}

func (sm *StoreMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sm.collectLowStock(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sm.stopChan:
			return
		case <-ticker.C:
			sm.collectLowStock(ctx)
		}
	}
}

func (sm *StoreMetrics) collectLowStock(ctx context.Context) {
	count, err := sm.lowStockProvider.LowStockCount(ctx)
	if err != nil {
		sm.logger.Warn("failed to collect low stock count", zap.Error(err))
		return
	}
	sm.lowStockCount.Record(ctx, count)
}

// Stop stops the periodic collector. Safe to call multiple times.
func (sm *StoreMetrics) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stopChan)
	})
}
