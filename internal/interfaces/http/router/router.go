package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/infrastructure/auth"
	"github.com/shopops/backend/internal/infrastructure/logger"
	"github.com/shopops/backend/internal/interfaces/http/handler"
	"github.com/shopops/backend/internal/interfaces/http/middleware"

	"go.opentelemetry.io/otel/metric"
)

// Dependencies carries everything the HTTP layer needs wired in
type Dependencies struct {
	Logger           *zap.Logger
	DB               *gorm.DB
	JWTService       *auth.JWTService
	IdempotencyStore shared.IdempotencyStore
	IdempotencyCfg   shared.IdempotencyConfig

	ProductHandler   *handler.ProductHandler
	OrderHandler     *handler.OrderHandler
	StockInHandler   *handler.StockInHandler
	InventoryHandler *handler.InventoryHandler

	ServiceName    string
	TracingEnabled bool
	Meter          metric.Meter
	MetricsEnabled bool
	CORS           middleware.CORSConfig
}

// New assembles the gin engine with the full middleware chain and all
// API routes mounted under /api/v1
func New(deps Dependencies) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORSWithConfig(deps.CORS))
	engine.Use(middleware.Tracing(deps.ServiceName, deps.TracingEnabled))
	engine.Use(middleware.HTTPMetrics(deps.Meter, deps.MetricsEnabled, deps.Logger))

	registerHealthRoutes(engine, deps.DB)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(deps.JWTService))
	api.Use(middleware.Idempotency(deps.IdempotencyStore, deps.IdempotencyCfg, deps.Logger))

	registerProductRoutes(api, deps.ProductHandler)
	registerOrderRoutes(api, deps.OrderHandler)
	registerStockInRoutes(api, deps.StockInHandler)
	registerInventoryRoutes(api, deps.InventoryHandler)

	return engine
}

func registerHealthRoutes(engine *gin.Engine, db *gorm.DB) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}

func registerProductRoutes(api *gin.RouterGroup, h *handler.ProductHandler) {
	products := api.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/sku/:sku", h.GetBySKU)
		products.GET("/:id", h.Get)
		products.PUT("/:id", h.Update)
		products.PUT("/:id/prices", h.UpdatePrices)
		products.PUT("/:id/thresholds", h.UpdateThresholds)
		products.POST("/:id/activate", h.Activate)
		products.POST("/:id/deactivate", h.Deactivate)
		products.DELETE("/:id", h.Delete)
	}
}

func registerOrderRoutes(api *gin.RouterGroup, h *handler.OrderHandler) {
	orders := api.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/stats", h.GetStats)
		orders.GET("/:id", h.Get)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.PUT("/:id/payment-status", h.UpdatePaymentStatus)
		orders.POST("/:id/cancel", h.Cancel)
	}
	api.GET("/customers/:id/orders", h.ListByCustomer)
}

func registerStockInRoutes(api *gin.RouterGroup, h *handler.StockInHandler) {
	stockIn := api.Group("/stock-in")
	{
		stockIn.POST("", h.Create)
		stockIn.GET("", h.List)
		stockIn.GET("/stats", h.GetStats)
		stockIn.GET("/:id", h.Get)
		stockIn.POST("/:id/confirm", h.Confirm)
		stockIn.POST("/:id/cancel", h.Cancel)
	}
}

func registerInventoryRoutes(api *gin.RouterGroup, h *handler.InventoryHandler) {
	inventory := api.Group("/inventory")
	{
		inventory.GET("/levels", h.Levels)
		inventory.GET("/levels/:id", h.ProductLevel)
		inventory.GET("/low-stock", h.LowStock)
		inventory.GET("/historical", h.Historical)
		inventory.GET("/products/:id/history", h.ProductHistory)
		inventory.GET("/verify", h.Verify)
	}
}
