// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/backoffice-be/internal/adapters/db"
	redis_a "github.com/ammerola/backoffice-be/internal/adapters/redis_adapter"
	"github.com/ammerola/backoffice-be/internal/adapters/storage"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/services"
	"github.com/ammerola/backoffice-be/internal/pkg/config"
	"github.com/ammerola/backoffice-be/internal/pkg/logger"
	"github.com/ammerola/backoffice-be/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()

	sm, err := config.NewSecretsManager(ctx, cfg, slogger)
	if err == nil {
		err = config.ApplySecrets(ctx, cfg, sm)
	}
	if err != nil {
		slogger.Error("failed to load secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Fewer connections than the API
	database, err := db.NewDatabase(ctx, db.ConfigFrom(cfg.Database, 10), slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient, err := redis_a.NewClient(ctx, cfg.Redis)
	if err != nil {
		slogger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	files, err := storage.New(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)
	invalidator := redis_a.NewInvalidator(cache, slogger)

	productRepo := db.NewProductRepository(database, slogger)
	jobs := db.NewJobRepository(database, slogger)

	purchaseService := services.NewPurchaseService(
		db.NewUnitOfWork(database, cfg.Database.LockTimeout, slogger),
		db.NewPurchaseRepository(database, slogger),
		services.NewCachedEmployeeResolver(db.NewEmployeeRepository(database, slogger), cache, cfg.Purchasing.EmployeeCacheTTL, slogger),
		slogger,
		services.WithPurchaseCache(cache, invalidator, cfg.Purchasing.CacheTTL, cfg.Purchasing.ListCacheTTL),
	)
	productService := services.NewProductService(productRepo, invalidator, cfg.Purchasing.ExpiringWindowDays, slogger)
	reportService := services.NewReportService(db.NewReportRepository(database, slogger), cache, cfg.Purchasing.CacheTTL, slogger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError(slogger)),
		RetryDelayFunc:  retryDelay,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck(slogger),
		Logger:          newAsynqLogger(slogger),
	})

	mux := asynq.NewServeMux()

	pdfProcessor := workers.NewPDFProcessor(purchaseService, productRepo, db.NewSupplierRepository(database, slogger), files, jobs, slogger)
	mux.HandleFunc(workers.TypePurchaseReceipt, pdfProcessor.ProcessReceipt)

	excelProcessor := workers.NewExcelProcessor(productService, reportService, files, jobs, cfg.Storage.PresignTTL, slogger)
	mux.HandleFunc(workers.TypeProductImport, excelProcessor.ProcessProductImport)
	mux.HandleFunc(workers.TypeSalesExport, excelProcessor.ProcessSalesExport)

	analyticsProcessor := workers.NewAnalyticsProcessor(reportService, jobs, slogger)
	mux.HandleFunc(workers.TypeStockAudit, analyticsProcessor.AuditStock)
	mux.HandleFunc(workers.TypeDashboardRefresh, analyticsProcessor.RefreshDashboard)

	notificationProcessor := workers.NewNotificationProcessor(productService, cfg, slogger)
	mux.HandleFunc(workers.TypeStockAlerts, notificationProcessor.SendStockAlerts)

	cleanupProcessor := workers.NewCleanupProcessor(jobs, files, cfg, slogger)
	mux.HandleFunc(workers.TypeJobsCleanup, cleanupProcessor.Cleanup)

	scheduler, err := newScheduler(redisOpt, cfg.Asynq, slogger)
	if err != nil {
		slogger.Error("failed to register periodic tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	if err := scheduler.Start(); err != nil {
		slogger.Error("failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// newScheduler registers the periodic maintenance tasks. An empty cron
// expression disables that task.
func newScheduler(redisOpt asynq.RedisClientOpt, cfg config.AsynqConfig, logger *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: newAsynqLogger(logger),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Error("failed to enqueue periodic task", slog.String("error", err.Error()))
			}
		},
	})

	periodic := []struct {
		cron     string
		taskType string
		queue    string
	}{
		{cfg.AuditCron, workers.TypeStockAudit, "low"},
		{cfg.AlertsCron, workers.TypeStockAlerts, "default"},
		{cfg.CleanupCron, workers.TypeJobsCleanup, "low"},
		{cfg.DashboardCron, workers.TypeDashboardRefresh, "low"},
	}

	for _, p := range periodic {
		if p.cron == "" {
			continue
		}
		if _, err := scheduler.Register(p.cron, asynq.NewTask(p.taskType, nil), asynq.Queue(p.queue)); err != nil {
			return nil, fmt.Errorf("register %s: %w", p.taskType, err)
		}
		logger.Info("periodic task registered",
			slog.String("type", p.taskType),
			slog.String("cron", p.cron))
	}

	return scheduler, nil
}

func handleError(logger *slog.Logger) func(ctx context.Context, task *asynq.Task, err error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		logger.ErrorContext(ctx, "task processing failed",
			slog.String("type", task.Type()),
			slog.Int("retried", retried),
			slog.Int("max_retry", maxRetry),
			slog.String("error", err.Error()))
	}
}

// retryDelay backs off exponentially; lock contention retries sooner
func retryDelay(n int, err error, t *asynq.Task) time.Duration {
	base := time.Second
	if errors.Is(err, domain.ErrContention) {
		base = 200 * time.Millisecond
	}
	delay := base * time.Duration(1<<uint(min(n, 20)))
	return min(delay, 10*time.Minute)
}

func healthCheck(logger *slog.Logger) func(error) {
	return func(err error) {
		if err != nil {
			logger.Error("worker health check failed", slog.String("error", err.Error()))
		}
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
