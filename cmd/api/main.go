// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/backoffice-be/internal/adapters/db"
	redis_a "github.com/ammerola/backoffice-be/internal/adapters/redis_adapter"
	"github.com/ammerola/backoffice-be/internal/adapters/storage"
	"github.com/ammerola/backoffice-be/internal/core/services"
	"github.com/ammerola/backoffice-be/internal/handlers"
	"github.com/ammerola/backoffice-be/internal/handlers/middleware"
	"github.com/ammerola/backoffice-be/internal/pkg/config"
	"github.com/ammerola/backoffice-be/internal/pkg/logger"
	"github.com/ammerola/backoffice-be/internal/workers"
	"github.com/ammerola/backoffice-be/migrations"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting back office API",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	if err := loadSecrets(ctx, cfg, slogger); err != nil {
		slogger.Error("failed to load secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !cfg.IsProduction() {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Warn("failed to run migrations", slog.String("error", err.Error()))
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	routes handlers.Routes
}

func (d *dependencies) cleanup() {
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, db.ConfigFrom(cfg.Database, 0), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient, err := redis_a.NewClient(ctx, cfg.Redis)
	if err != nil {
		deps.cleanup()
		return nil, err
	}
	deps.redisClient = redisClient

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)
	invalidator := redis_a.NewInvalidator(cache, logger)

	files, err := storage.New(ctx, cfg, logger)
	if err != nil {
		deps.cleanup()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	asynqOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqOpt)
	deps.asynqInspector = asynq.NewInspector(asynqOpt)

	// Repositories
	products := db.NewProductRepository(database, logger)
	jobs := db.NewJobRepository(database, logger)
	employees := services.NewCachedEmployeeResolver(
		db.NewEmployeeRepository(database, logger), cache, cfg.Purchasing.EmployeeCacheTTL, logger)

	// Services
	purchaseService := services.NewPurchaseService(
		db.NewUnitOfWork(database, cfg.Database.LockTimeout, logger),
		db.NewPurchaseRepository(database, logger),
		employees,
		logger,
		services.WithPurchaseCache(cache, invalidator, cfg.Purchasing.CacheTTL, cfg.Purchasing.ListCacheTTL),
	)
	productService := services.NewProductService(products, invalidator, cfg.Purchasing.ExpiringWindowDays, logger)
	reportService := services.NewReportService(db.NewReportRepository(database, logger), cache, cfg.Purchasing.CacheTTL, logger)

	dispatcher := workers.NewDispatcher(deps.asynqClient, jobs, cfg.Asynq.RetryMax, logger)

	// Handlers
	deps.routes = handlers.Routes{
		Purchases: handlers.NewPurchaseHandler(purchaseService, logger),
		Products:  handlers.NewProductHandler(productService, logger),
		Reports:   handlers.NewReportHandler(reportService, logger),
		Exports:   handlers.NewExportHandler(reportService, dispatcher, logger),
		Imports: handlers.NewImportHandler(dispatcher, jobs, files, cfg.FileProcessing.TempDir,
			int64(cfg.FileProcessing.PDFMaxSizeMB)<<20, int64(cfg.FileProcessing.ExcelMaxSizeMB)<<20, logger),
		Health: handlers.NewHealthHandler(database, redisClient, deps.asynqInspector,
			cfg.App.Version, cfg.App.Environment, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	deps.routes.Register(mux)

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.ClientIP(cfg.Security.TrustedProxies),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration),
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		mws = append(mws, middleware.CORS(cfg.Security.AllowedOrigins))
	}
	if cfg.Security.SecureHeaders {
		mws = append(mws, middleware.SecureHeaders)
	}
	mws = append(mws, middleware.ContentTypeJSON, middleware.ActingUser(cfg.Security.UserIDHeader))
	if cfg.Server.RequestTimeout > 0 {
		mws = append(mws, middleware.Timeout(cfg.Server.RequestTimeout))
	}

	return &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           middleware.Chain(mux, mws...),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func loadSecrets(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	sm, err := config.NewSecretsManager(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return config.ApplySecrets(ctx, cfg, sm)
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	return db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		Source:      migrations.FS,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, logger, 3)
}
