package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/hvu/bankcore/internal/adapter/http"
	"github.com/hvu/bankcore/internal/adapter/http/handler"
	"github.com/hvu/bankcore/internal/adapter/http/middleware"
	postgresRepo "github.com/hvu/bankcore/internal/adapter/repository/postgres"
	redisRepo "github.com/hvu/bankcore/internal/adapter/repository/redis"
	"github.com/hvu/bankcore/internal/infrastructure/auth"
	"github.com/hvu/bankcore/internal/infrastructure/config"
	"github.com/hvu/bankcore/internal/infrastructure/logger"
	"github.com/hvu/bankcore/internal/infrastructure/metrics"
	"github.com/hvu/bankcore/internal/infrastructure/postgres"
	"github.com/hvu/bankcore/internal/infrastructure/redis"
	"github.com/hvu/bankcore/internal/notifier"
	"github.com/hvu/bankcore/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "bankcore",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := postgres.RunMigrations(log, cfg.DatabaseURL, path); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

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

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool, cfg.DatabaseLockTimeout)
	customerRepo := postgresRepo.NewCustomerRepository(pool)
	logRepo := postgresRepo.NewTransactionLogRepository(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	balanceCache := redisRepo.NewBalanceCache(redisClient, cfg.BalanceCacheTTL)

	// Notification dispatcher
	var sender notifier.Sender
	if cfg.SMTPHost != "" {
		sender = notifier.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		sender = notifier.NewLogSender(log)
	}
	dispatcher := notifier.NewAsyncDispatcher(notifier.Config{
		Sender:     sender,
		Logger:     log,
		BufferSize: cfg.NotifierBufferSize,
	})
	go dispatcher.Start(ctx)

	// Use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, customerRepo, logRepo, retrier, dispatcher)
	authUC := usecase.NewAuthUseCase(customerRepo, idGen)

	// Handlers
	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	authHandler := handler.NewAuthHandler(authUC, jwtManager, m)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC, balanceCache, m)
	customerHandler := handler.NewCustomerHandler(authUC, ledgerUC, balanceCache)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:      authHandler,
		LedgerHandler:    ledgerHandler,
		CustomerHandler:  customerHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
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
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
