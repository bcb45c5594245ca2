package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chezflora/flora-admin/internal/app"
	"github.com/chezflora/flora-admin/internal/audit"
	"github.com/chezflora/flora-admin/internal/auth"
	"github.com/chezflora/flora-admin/internal/catalog"
	"github.com/chezflora/flora-admin/internal/content"
	"github.com/chezflora/flora-admin/internal/dashboard"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/observability"
	"github.com/chezflora/flora-admin/internal/offerings"
	"github.com/chezflora/flora-admin/internal/orders"
	"github.com/chezflora/flora-admin/internal/payments"
	"github.com/chezflora/flora-admin/internal/platform/cache"
	"github.com/chezflora/flora-admin/internal/platform/db"
	"github.com/chezflora/flora-admin/internal/settings"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/users"
	"github.com/chezflora/flora-admin/internal/view"
	"github.com/chezflora/flora-admin/internal/workshops"
	"github.com/chezflora/flora-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	sessionManager := shared.NewSessionManager(redisClient, "flora_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	vault, err := shared.NewTokenVault(cfg.TokenVaultKey)
	if err != nil {
		logger.Error("init token vault", slog.Any("error", err))
		os.Exit(1)
	}

	engine, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	renderer := view.NewRenderer(engine, csrfManager, logger)

	apiClient, err := flora.NewClient(flora.ClientConfig{
		BaseURL: cfg.FloraAPIBaseURL,
		Timeout: cfg.FloraAPITimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("init api client", slog.Any("error", err))
		os.Exit(1)
	}

	auditStore := audit.NewStore(pool)
	recorder := audit.NewRecorder(logger, auditStore)

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		TokenVault:     vault,
		Metrics:        metrics,

		AuthHandler:      auth.NewHandler(logger, apiClient, sessionManager, vault, csrfManager, renderer),
		DashboardHandler: dashboard.NewHandler(logger, apiClient, renderer, redisClient, cfg.DashboardCacheTTL),
		UsersModule:      users.NewModule(logger, apiClient, renderer, csrfManager, recorder),
		OrdersModule:     orders.NewModule(logger, apiClient, renderer, csrfManager, recorder),
		CatalogModule:    catalog.NewModule(logger, apiClient, renderer, csrfManager, recorder),
		WorkshopsModule:  workshops.NewModule(logger, apiClient, renderer, csrfManager, recorder),
		OfferingsModule:  offerings.NewModule(logger, apiClient, renderer, csrfManager, recorder),
		ContentModule:    content.NewModule(logger, apiClient, renderer, csrfManager, recorder),
		PaymentsModule:   payments.NewModule(logger, apiClient, renderer, csrfManager, recorder),
		SettingsModule:   settings.NewModule(logger, apiClient, renderer, csrfManager, recorder),
		AuditModule:      audit.NewModule(logger, auditStore, renderer, csrfManager),
		ExportsHandler:   jobs.NewExportsHandler(logger, renderer, csrfManager, jobClient, inspector, cfg.ExportDir, recorder),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
