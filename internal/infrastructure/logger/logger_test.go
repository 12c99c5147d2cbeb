package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopops/backend/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	logger := New(config.LogConfig{Level: "debug", Format: "json", Output: "stdout"})
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger = New(config.LogConfig{Level: "error", Format: "console", Output: "stderr"})
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "debug"},
		{"INFO", "info"},
		{"warning", "warn"},
		{"error", "error"},
		{"bogus", "info"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input).String(), "input %q", tt.input)
	}
}

func TestContextLoggerRoundTrip(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	ctx, enriched := WithRequestID(ctx, base, "req-123")
	ctx, enriched = WithUserID(ctx, enriched, "user-456")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "user-456", GetUserID(ctx))

	FromContext(ctx).Info("hello")
	_ = enriched

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "user-456", fields["user_id"])
}

func TestFromContext_Missing(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	// No-op logger discards everything, never panics.
	logger.Info("discarded")
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("logs errors", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 0
		}, assert.AnError)

		require.Len(t, logs.All(), 1)
		assert.Equal(t, "sql error", logs.All()[0].Message)
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 0
		}, gormlogger.ErrRecordNotFound)

		assert.Empty(t, logs.All())
	})

	t.Run("slow query warning", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)
		gl.slowThreshold = time.Nanosecond

		gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
			return "SELECT pg_sleep(10)", 1
		}, nil)

		require.Len(t, logs.All(), 1)
		assert.Contains(t, logs.All()[0].Message, "slow sql")
	})

	t.Run("silent swallows everything", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, nil)

		assert.Empty(t, logs.All())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
