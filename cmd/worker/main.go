package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/chezflora/flora-admin/internal/app"
	"github.com/chezflora/flora-admin/internal/audit"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/platform/db"
	"github.com/chezflora/flora-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	apiClient, err := flora.NewClient(flora.ClientConfig{
		BaseURL: cfg.FloraAPIBaseURL,
		Timeout: cfg.FloraAPITimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("init api client", slog.Any("error", err))
		os.Exit(1)
	}

	exporter := jobs.NewExporter(logger, apiClient, cfg.ExportDir, cfg.FloraServiceUsername, cfg.FloraServicePassword)
	pruner := jobs.NewPruner(logger, audit.NewStore(pool), cfg.AuditRetention)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Exporter:  exporter,
		Pruner:    pruner,
		PruneSpec: cfg.AuditPruneSpec,
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
