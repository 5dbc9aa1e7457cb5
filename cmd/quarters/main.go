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
	"github.com/redis/go-redis/v9"

	"github.com/quartershq/quarters/internal/accounting/accounts"
	"github.com/quartershq/quarters/internal/accounting/bills"
	"github.com/quartershq/quarters/internal/accounting/journals"
	"github.com/quartershq/quarters/internal/app"
	"github.com/quartershq/quarters/internal/banking"
	"github.com/quartershq/quarters/internal/observability"
	"github.com/quartershq/quarters/internal/payouts"
	"github.com/quartershq/quarters/internal/platform/cache"
	"github.com/quartershq/quarters/internal/platform/db"
	"github.com/quartershq/quarters/internal/reconciliation"
	"github.com/quartershq/quarters/internal/shared"
	"github.com/quartershq/quarters/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, continuing without ping", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	metrics := observability.NewMetrics()

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	journalsRepo := journals.NewRepository(dbpool)
	journalsService := journals.NewService(journalsRepo, auditLogger, metrics)
	journalsHandler := journals.NewHandler(logger, journalsService)

	billsRepo := bills.NewRepository(dbpool)
	billsService := bills.NewService(billsRepo, auditLogger)
	billsHandler := bills.NewHandler(logger, billsService)

	bankingRepo := banking.NewRepository(dbpool)
	bankingCache := banking.NewCache(redisClient, cfg.CacheTTL)
	if err := bankingCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	bankingService := banking.NewService(bankingRepo, bankingCache, auditLogger, idempotencyStore)
	bankingHandler := banking.NewHandler(logger, bankingService)

	reconRepo := reconciliation.NewRepository(dbpool)
	reconService := reconciliation.NewService(reconRepo, bankingService, auditLogger, metrics)
	reconHandler := reconciliation.NewHandler(logger, reconService)

	payoutsRepo := payouts.NewRepository(dbpool)
	payoutsService := payouts.NewService(payoutsRepo, auditLogger)
	payoutsHandler := payouts.NewHandler(logger, payoutsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		AccountsHandler:       accountsHandler,
		JournalsHandler:       journalsHandler,
		BillsHandler:          billsHandler,
		BankingHandler:        bankingHandler,
		ReconciliationHandler: reconHandler,
		PayoutsHandler:        payoutsHandler,
		JobHandler:            jobHandler,
		Metrics:               metrics,
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
