package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/infrastructure/telemetry"
)

// httpMetrics bundles the request instruments
type httpMetrics struct {
	requestsTotal   *telemetry.Counter
	requestDuration *telemetry.Histogram
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestsTotal, err := telemetry.NewCounter(meter,
		"shopops_http_requests_total",
		"Total number of HTTP requests",
		"{requests}")
	if err != nil {
		return nil, err
	}

	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "shopops_http_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
	}, nil
}

// HTTPMetrics records request count and duration per route. When disabled or
// when instrument creation fails, requests pass through unrecorded.
func HTTPMetrics(meter metric.Meter, enabled bool, logger *zap.Logger) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	metrics, err := newHTTPMetrics(meter)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create HTTP metrics, continuing without them", zap.Error(err))
		}
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// Unmatched routes collapse into one series instead of one per URL
			route = "unmatched"
		}

		ctx := c.Request.Context()
		metrics.requestsTotal.Inc(ctx,
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
			telemetry.AttrHTTPStatusCode.String(strconv.Itoa(c.Writer.Status())),
		)
		metrics.requestDuration.RecordDuration(ctx, time.Since(start),
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		)
	}
}
