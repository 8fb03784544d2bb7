package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/spares/backend/internal/application/catalog"
	inventoryapp "github.com/spares/backend/internal/application/inventory"
	referenceapp "github.com/spares/backend/internal/application/reference"
	"github.com/spares/backend/internal/infrastructure/auth"
	"github.com/spares/backend/internal/infrastructure/cache"
	"github.com/spares/backend/internal/infrastructure/config"
	"github.com/spares/backend/internal/infrastructure/event"
	"github.com/spares/backend/internal/infrastructure/logger"
	"github.com/spares/backend/internal/infrastructure/persistence"
	"github.com/spares/backend/internal/infrastructure/telemetry"
	"github.com/spares/backend/internal/interfaces/http/handler"
	"github.com/spares/backend/internal/interfaces/http/middleware"
	"github.com/spares/backend/internal/interfaces/http/router"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Spares Ledger API
//	@version		1.0
//	@description	Spare-parts inventory ledger: catalog, stock records and the append-only transaction history
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic("Failed to load .env: " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so the bridged logger is used everywhere below
	collector := telemetry.Exporter{
		Endpoint:       cfg.Telemetry.CollectorEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	}
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Exporter:      collector,
		Enabled:       cfg.Telemetry.Enabled,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Exporter:       collector,
		Enabled:        cfg.Telemetry.MetricsEnabled,
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Exporter: collector,
		Enabled:  cfg.Telemetry.LogsEnabled,
		Level:    logger.ParseLevel(cfg.Telemetry.LogsLevel),
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log)

	log.Info("Starting spares ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Telemetry.DBTraceEnabled {
		tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL && !cfg.IsProduction(),
			SlowQueryThresh: cfg.Database.SlowQueryThreshold,
			DBSystem:        "postgresql",
		}, log).WithTracerProvider(tp.Provider())
		if err := tracing.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, mp, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	var registry *prometheus.Registry
	if cfg.Telemetry.PrometheusEnabled {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to get sql.DB for metrics", zap.Error(err))
		}
		registry = telemetry.NewPrometheusRegistry(sqlDB, cfg.Database.DBName)
	}

	// Stock alerts go to the log, and to Redis when configured
	var redisClient *redis.Client
	if cfg.Alerts.RedisEnabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	dedupe := cache.NewAlertDedupeStore(redisClient, log)

	var alertMetrics *telemetry.AlertDeliveryMetrics
	if registry != nil {
		alertMetrics = telemetry.NewAlertDeliveryMetrics(registry)
	}

	lowStockHandler := inventoryapp.NewLowStockHandler(log)
	if redisClient != nil {
		lowStockHandler.WithNotifier(cache.NewRedisStockAlertNotifier(
			redisClient,
			dedupe,
			cache.RedisNotifierConfig{Channel: cfg.Alerts.Channel, DedupeTTL: cfg.Alerts.DedupeTTL},
			alertMetrics,
			log,
		))
	}

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(lowStockHandler, lowStockHandler.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	repos := persistence.NewRepositorySet(db.DB)

	ledgerService := inventoryapp.NewLedgerService(inventoryapp.LedgerServiceConfig{
		Records:      repos.Records,
		Transactions: repos.Transactions,
		PartTypes:    repos.PartTypes,
		Locations:    repos.Locations,
		Actors:       repos.Actors,
		Equipment:    repos.Equipment,
		TxScope:      persistence.NewGormTransactionScope(db.DB),
		Logger:       log,
	})
	ledgerService.SetEventPublisher(eventBus)

	var ledgerMetrics *telemetry.LedgerMetrics
	if mp.IsEnabled() {
		ledgerMetrics, err = telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
			Meter:  mp.Meter("spares.ledger"),
			Logger: log,
			Stock:  telemetry.NewGormStockSource(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize ledger metrics", zap.Error(err))
		}
		ledgerService.SetLedgerMetrics(ledgerMetrics)
	}

	partTypeService := catalogapp.NewPartTypeService(repos.PartTypes, repos.Records, repos.Manufacturers, repos.EquipmentModels)
	referenceService := referenceapp.NewReferenceService(repos, persistence.NewGormReferenceScope(db.DB), log)

	engineCfg := router.EngineConfig{
		HTTP: cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			Enabled:        cfg.Telemetry.Enabled,
			TracerProvider: tp.Provider(),
		},
		Actor: middleware.ActorConfig{
			Verifier:     auth.NewTokenVerifier(cfg.Auth),
			RequireToken: cfg.Auth.RequireToken,
			Logger:       log,
		},
		Registry: registry,
		Logger:   log,
	}
	if mp.IsEnabled() {
		engineCfg.Meter = mp.Meter("spares.http")
	}

	engine, err := router.NewEngine(engineCfg, router.Handlers{
		PartTypes:    handler.NewPartTypeHandler(partTypeService),
		Inventory:    handler.NewInventoryHandler(ledgerService),
		Transactions: handler.NewTransactionHandler(ledgerService),
		References:   handler.NewReferenceHandler(referenceService),
		Health:       handler.NewHealthHandler(db, version),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// HTTP first so no request publishes into a stopped bus
	err = srv.Shutdown(shutdownCtx)
	if ledgerMetrics != nil {
		err = multierr.Append(err, ledgerMetrics.Stop())
	}
	if dbMetrics != nil {
		err = multierr.Append(err, dbMetrics.Stop())
	}
	err = multierr.Combine(
		err,
		eventBus.Stop(shutdownCtx),
		dedupe.Close(),
		closeRedis(redisClient),
		db.Close(),
		mp.Shutdown(shutdownCtx),
		tp.Shutdown(shutdownCtx),
		lp.Shutdown(shutdownCtx),
	)
	if err != nil {
		log.Error("Shutdown completed with errors", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server exited gracefully")
}

func closeRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
