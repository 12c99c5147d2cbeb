package telemetry_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/infrastructure/telemetry"
)

type stubLowStockProvider struct {
	count int64
	calls atomic.Int64
}

func (p *stubLowStockProvider) LowStockCount(context.Context) (int64, error) {
	p.calls.Add(1)
	return p.count, nil
}

func TestNewStoreMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	sm, err := telemetry.NewStoreMetrics(telemetry.StoreMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, sm)
}

func TestNewStoreMetrics_NilMeter(t *testing.T) {
	sm, err := telemetry.NewStoreMetrics(telemetry.StoreMetricsConfig{
		Logger: zap.NewNop(),
	})

	require.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, sm)
}

func TestStoreMetrics_RecordersDoNotPanic(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	sm, err := telemetry.NewStoreMetrics(telemetry.StoreMetricsConfig{Meter: meter})
	require.NoError(t, err)

	ctx := context.Background()
	sm.RecordOrderCreated(ctx)
	sm.RecordOrderConfirmed(ctx)
	sm.RecordOrderCancelled(ctx)
	sm.RecordStockInConfirmed(ctx)
	sm.RecordStockConflict(ctx)
}

func TestStoreMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &stubLowStockProvider{count: 3}

	sm, err := telemetry.NewStoreMetrics(telemetry.StoreMetricsConfig{
		Meter:            meter,
		LowStockProvider: provider,
	})
	require.NoError(t, err)
	defer sm.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sm.StartPeriodicCollection(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return provider.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestStoreMetrics_StopIsIdempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	sm, err := telemetry.NewStoreMetrics(telemetry.StoreMetricsConfig{Meter: meter})
	require.NoError(t, err)

	sm.Stop()
	sm.Stop()
}
