package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/creditdesk/internal/adapter/http"
	"github.com/iho/creditdesk/internal/adapter/http/handler"
	"github.com/iho/creditdesk/internal/adapter/http/middleware"
	"github.com/iho/creditdesk/internal/adapter/notify"
	postgresRepo "github.com/iho/creditdesk/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/creditdesk/internal/adapter/repository/redis"
	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/infrastructure/config"
	"github.com/iho/creditdesk/internal/infrastructure/logger"
	"github.com/iho/creditdesk/internal/infrastructure/metrics"
	"github.com/iho/creditdesk/internal/infrastructure/postgres"
	"github.com/iho/creditdesk/internal/infrastructure/redis"
	"github.com/iho/creditdesk/internal/infrastructure/sweeper"
	"github.com/iho/creditdesk/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	requestRepo := postgresRepo.NewRequestRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	sweepLock := redisRepo.NewSweepLock(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	sink := newNotificationSink(cfg, log)

	// Use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txnRepo, idGen).
		WithRetrier(retrier).
		WithMetrics(m)
	accountUC := usecase.NewAccountUseCase(accountRepo, txnRepo, requestRepo, idGen).
		WithMetrics(m)
	requestUC := usecase.NewRequestUseCase(
		txManager, requestRepo, accountRepo, ledgerUC, idGen,
		cfg.ServiceCosts,
		domain.TransitionPolicy{
			ProgressAfter: cfg.ProgressAfter,
			CompleteAfter: cfg.CompleteAfter,
		},
		sink, log,
	).WithMetrics(m)
	sweepUC := usecase.NewSweepUseCase(requestUC, ledgerUC, accountRepo, sink, log).
		WithMetrics(m)
	reconUC := usecase.NewReconciliationUseCase(accountRepo, txnRepo)

	// Background sweeper
	sweep := sweeper.New(sweeper.Config{
		Sweep:    sweepUC,
		Lock:     sweepLock,
		LockTTL:  cfg.SweepLockTTL,
		Interval: cfg.SweepInterval,
		Logger:   log,
		Metrics:  m,
	})
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go func() {
		if err := sweep.Start(sweepCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("sweeper stopped")
		}
	}()

	// HTTP
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, reconUC, cfg.ExpiryWindow),
		RequestHandler:   handler.NewRequestHandler(requestUC),
		SweepHandler:     handler.NewSweepHandler(sweepUC, sweeper.SystemClock{}),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      newRateLimiter(cfg),
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newNotificationSink picks the webhook sink when a URL is configured and
// falls back to logging deliveries.
func newNotificationSink(cfg *config.Config, log zerolog.Logger) usecase.NotificationSink {
	if cfg.NotifyWebhookURL != "" {
		return notify.NewWebhookSink(cfg.NotifyWebhookURL, cfg.NotifyTimeout, cfg.NotifyRetryBudget, log)
	}
	return notify.NewLogSink(log)
}

func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}
