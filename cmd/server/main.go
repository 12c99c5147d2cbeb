package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appcatalog "github.com/shopops/backend/internal/application/catalog"
	appinventory "github.com/shopops/backend/internal/application/inventory"
	apptrade "github.com/shopops/backend/internal/application/trade"
	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/infrastructure/auth"
	"github.com/shopops/backend/internal/infrastructure/cache"
	"github.com/shopops/backend/internal/infrastructure/config"
	"github.com/shopops/backend/internal/infrastructure/logger"
	"github.com/shopops/backend/internal/infrastructure/persistence"
	"github.com/shopops/backend/internal/infrastructure/telemetry"
	"github.com/shopops/backend/internal/interfaces/http/handler"
	"github.com/shopops/backend/internal/interfaces/http/middleware"
	"github.com/shopops/backend/internal/interfaces/http/router"

	gormlogger "gorm.io/gorm/logger"
)

const lowStockCollectionInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	log.Info("starting shopops backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	ctx := context.Background()

	// Telemetry. Every provider degrades to no-op when disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("failed to initialize logger provider", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, zapcore.InfoLevel)
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
	}

	// Database.
	gormLogLevel := gormlogger.Warn
	if cfg.App.Env == "development" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Idempotency store: Redis when reachable, in-memory otherwise.
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true))
	idempotencyStore, err := storeFactory.CreateStore(ctx)
	if err != nil {
		log.Fatal("failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()

	// Repositories and transaction scope.
	productRepo := persistence.NewGormProductRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	stockLedger := persistence.NewGormStockLedger(db.DB)

	// Application services.
	orderService := apptrade.NewOrderService(txScope, log)
	stockInService := apptrade.NewStockInService(txScope, log)
	productService := appcatalog.NewProductService(productRepo, stockInService, log)
	inventoryService := appinventory.NewInventoryService(productRepo, stockLedger, log)

	// Domain metrics ride on the shared meter.
	meter := meterProvider.Meter("shopops/store")
	storeMetrics, err := telemetry.NewStoreMetrics(telemetry.StoreMetricsConfig{
		Meter:            meter,
		Logger:           log,
		LowStockProvider: inventoryService,
	})
	if err != nil {
		log.Fatal("failed to initialize store metrics", zap.Error(err))
	}
	orderService.SetMetrics(storeMetrics)
	stockInService.SetMetrics(storeMetrics)
	if meterProvider.IsEnabled() {
		storeMetrics.StartPeriodicCollection(ctx, lowStockCollectionInterval)
		defer storeMetrics.Stop()
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Dependencies{
		Logger:           log,
		DB:               db.DB,
		JWTService:       jwtService,
		IdempotencyStore: idempotencyStore,
		IdempotencyCfg:   shared.DefaultIdempotencyConfig(),

		ProductHandler:   handler.NewProductHandler(productService, log),
		OrderHandler:     handler.NewOrderHandler(orderService, log),
		StockInHandler:   handler.NewStockInHandler(stockInService, log),
		InventoryHandler: handler.NewInventoryHandler(inventoryService, log),

		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		Meter:          meter,
		MetricsEnabled: meterProvider.IsEnabled(),
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("meter shutdown failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("log exporter shutdown failed", zap.Error(err))
	}

	log.Info("shutdown complete")
}
