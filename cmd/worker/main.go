package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/atelier-store/atelier/internal/app"
	"github.com/atelier-store/atelier/internal/inventory"
	"github.com/atelier-store/atelier/internal/observability"
	"github.com/atelier-store/atelier/internal/platform/cache"
	"github.com/atelier-store/atelier/internal/platform/db"
	"github.com/atelier-store/atelier/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	ledgerMetrics := observability.NewLedgerMetrics(metrics.Registerer())

	inventoryRepo := inventory.NewRepository(pool)
	statsCache := inventory.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	inventoryService := inventory.NewService(inventory.ServiceDeps{
		Repo:    inventoryRepo,
		Logger:  logger,
		Cache:   statsCache,
		Metrics: ledgerMetrics,
	}, inventory.ServiceConfig{LowStockThreshold: cfg.LowStockThreshold})

	retryJob := jobs.NewLogRetryHandler(inventoryRepo, logger, ledgerMetrics)
	warmupJob := jobs.NewStatsWarmupHandler(inventoryService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeLogRetry, Handler: retryJob.Handle},
			{Type: jobs.TaskTypeStatsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.StatsWarmupSpec, Task: jobs.NewStatsWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
