package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/ai"
	"github.com/ayni-health/backend/internal/audit"
	"github.com/ayni-health/backend/internal/azure"
	"github.com/ayni-health/backend/internal/config"
	"github.com/ayni-health/backend/internal/handler"
	"github.com/ayni-health/backend/internal/middleware"
	"github.com/ayni-health/backend/internal/pdf"
	"github.com/ayni-health/backend/internal/repository"
	"github.com/ayni-health/backend/internal/security"
	"github.com/ayni-health/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()
	checks := map[string]handler.HealthCheck{}

	// The database backs the audit trail and optionally the history store
	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = newPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		checks["database"] = pool.Ping
		logger.Info("Successfully connected to database")
	}

	// History payload encryption
	codec := repository.NewCodec(nil)
	if cfg.Storage.EncryptionKey != "" {
		key, err := security.ParseKey(cfg.Storage.EncryptionKey)
		if err != nil {
			logger.Fatal("Invalid storage encryption key", zap.Error(err))
		}
		encryptor, err := security.NewEncryptor(key)
		if err != nil {
			logger.Fatal("Failed to initialize encryptor", zap.Error(err))
		}
		codec = repository.NewCodec(encryptor)
	}

	store, closeStore := newHistoryStore(ctx, cfg, pool, codec, checks, logger)
	defer closeStore()

	// Initialize AI client. Without credentials every checkup gets the fallback analysis.
	var completer ai.Completer
	if cfg.AI.APIKey != "" {
		client, err := ai.NewClient(ai.Config{
			Provider:          cfg.AI.Provider,
			Endpoint:          cfg.AI.Endpoint,
			APIKey:            cfg.AI.APIKey,
			Model:             cfg.AI.Model,
			APIVersion:        cfg.AI.APIVersion,
			Timeout:           cfg.AI.Timeout,
			MaxRetries:        cfg.AI.MaxRetries,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize AI client", zap.Error(err))
		}
		completer = client
	} else {
		logger.Warn("AI API key not configured, checkups will use the fallback analysis")
	}
	analyzer := ai.NewAnalyzer(completer, logger)

	// Initialize services
	wellnessService := service.NewWellnessService(service.Config{
		HistoryLimit:  cfg.History.Limit,
		SeedFromStore: cfg.History.SeedFromStore,
		ScheduleTick:  cfg.Schedule.Tick,
	}, analyzer, store, pdf.NewPDFGenerator(logger), logger)

	auditLogger := audit.NewLogger(pool, logger)
	if err := auditLogger.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to prepare audit log", zap.Error(err))
	}
	wellnessService.WithAudit(auditLogger)

	if cfg.Azure.ArchiveReports {
		reportBlobClient, err := azure.NewBlobStorageClient(azure.BlobConfig{
			AccountName:   cfg.Azure.AccountName,
			AccountKey:    cfg.Azure.AccountKey,
			ContainerName: cfg.Azure.ReportContainer,
			ServiceURL:    cfg.Azure.ServiceURL,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize report blob storage client", zap.Error(err))
		}
		if err := reportBlobClient.EnsureContainer(ctx); err != nil {
			logger.Fatal("Failed to prepare report container", zap.Error(err))
		}
		wellnessService.WithReportArchive(reportBlobClient)
	}

	// Initialize handlers
	wellnessHandler := handler.NewWellnessHandler(wellnessService, logger)
	healthHandler := handler.NewHealthHandler(checks, logger)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	r := gin.New()

	// Add recovery middleware (must be first)
	r.Use(middleware.RecoveryMiddleware(logger))

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	handler.RegisterRoutes(r, wellnessHandler, healthHandler)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Server.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.Logging.Format != "" {
		zcfg.Encoding = cfg.Logging.Format
	}
	if err := zcfg.Level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		return nil, err
	}
	return zcfg.Build()
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// newHistoryStore builds the configured history store and registers its health check
func newHistoryStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, codec repository.Codec, checks map[string]handler.HealthCheck, logger *zap.Logger) (repository.HistoryStore, func()) {
	prefix := cfg.Storage.KeyPrefix

	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client, err := repository.NewRedisClient(ctx, repository.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store := repository.NewRedisHistoryStore(client, prefix, cfg.Redis.TTL, codec, logger)
		checks["redis"] = store.Ping
		return store, func() { closeRedis(client, logger) }

	case config.DriverPostgres:
		store := repository.NewPostgresHistoryStore(pool, prefix, codec, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare history table", zap.Error(err))
		}
		return store, func() {}

	case config.DriverAzBlob:
		client, err := azure.NewBlobStorageClient(azure.BlobConfig{
			AccountName:   cfg.Azure.AccountName,
			AccountKey:    cfg.Azure.AccountKey,
			ContainerName: cfg.Azure.HistoryContainer,
			ServiceURL:    cfg.Azure.ServiceURL,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Azure Blob Storage client", zap.Error(err))
		}
		if err := client.EnsureContainer(ctx); err != nil {
			logger.Fatal("Failed to prepare history container", zap.Error(err))
		}
		return azure.NewBlobHistoryStore(client, prefix, codec, logger), func() {}
	}

	return repository.NewMemoryHistoryStore(prefix, codec), func() {}
}

func closeRedis(client *redis.Client, logger *zap.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("Failed to close Redis client", zap.Error(err))
	}
}
