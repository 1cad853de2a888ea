package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tripsplit/tripsplit-backend/config"
	"github.com/tripsplit/tripsplit-backend/db"
	"github.com/tripsplit/tripsplit-backend/handlers"
	"github.com/tripsplit/tripsplit-backend/internal/archive"
	"github.com/tripsplit/tripsplit-backend/internal/currency"
	"github.com/tripsplit/tripsplit-backend/internal/lock"
	"github.com/tripsplit/tripsplit-backend/internal/notification"
	"github.com/tripsplit/tripsplit-backend/internal/settlement"
	"github.com/tripsplit/tripsplit-backend/internal/store/postgres"
	"github.com/tripsplit/tripsplit-backend/internal/summary"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/middleware"
	"github.com/tripsplit/tripsplit-backend/router"
	"github.com/tripsplit/tripsplit-backend/services"
)

const (
	dbConnectTimeout = time.Minute
	shutdownTimeout  = 30 * time.Second
)

// @title TripSplit API
// @version 1.0
// @description Trip expense settlement, trip closure and currency management.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// SIGTERM starts a graceful drain.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to configure database pool: %v", err)
	}
	pool, err := db.Connect(ctx, poolConfig, dbConnectTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs the rate cache, the locks and rate limiting. All of them
	// degrade when it is unreachable, so startup continues without it.
	redisClient := redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
	defer func() { _ = redisClient.Close() }()
	if err := config.TestRedisConnection(ctx, redisClient, 3, 2*time.Second); err != nil {
		log.Warnw("Redis unavailable, continuing in degraded mode", "error", err)
	}

	// Stores
	txManager := postgres.NewTxManager(pool)
	tripStore := postgres.NewTripStore(pool)
	currencyStore := postgres.NewCurrencyStore(pool)
	outboxStore := postgres.NewOutboxStore(pool)

	locker := lock.NewRedisLocker(redisClient, "tripsplit:lock:")

	// Currency conversion
	rateCache := currency.NewRateCache(redisClient, time.Duration(cfg.Currency.CacheTTLSeconds)*time.Second)
	currencyService := currency.NewService(currencyStore, rateCache, cfg.Currency.ReferenceCurrency)
	feed := currency.NewFeedClient(cfg.Currency.FeedURL, cfg.Currency.ReferenceCurrency,
		time.Duration(cfg.Currency.FeedTimeoutSeconds)*time.Second)
	scheduler := currency.NewScheduler(cfg.Currency.Schedule, feed, currencyService, locker)
	if cfg.Currency.SchedulerEnabled {
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start rate scheduler: %v", err)
		}
	}

	// Notifications
	workerPool := notification.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()
	emailSender := notification.NewEmailSender(cfg.Email)
	dispatcher := notification.NewDispatcher(outboxStore, workerPool, emailSender, cfg.Outbox)
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()

	// Settlement and trip closure
	calculator := settlement.NewCalculator(currencyService,
		settlement.WithConcurrency(cfg.Settlement.ConversionConcurrency))
	var summaryOpts []summary.Option
	reportHandler := handlers.NewReportHandler(nil)
	if cfg.Storage.Enabled() {
		storage, err := archive.NewS3FileStorage(ctx, cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to configure report storage: %v", err)
		}
		archiver := archive.NewReportArchiver(storage, time.Duration(cfg.Storage.URLTTLSeconds)*time.Second)
		summaryOpts = append(summaryOpts, summary.WithReportArchiver(archiver))
		reportHandler = handlers.NewReportHandler(archiver)
		log.Infow("Settlement report archiving enabled", "bucket", cfg.Storage.Bucket)
	}
	summaryService := summary.NewService(tripStore, txManager, calculator,
		notification.NewOutboxQueue(outboxStore), locker, cfg.Currency.ReferenceCurrency, summaryOpts...)

	// HTTP
	jwtValidator, err := middleware.NewJWTValidator(&cfg.Server)
	if err != nil {
		log.Fatalf("Failed to create JWT validator: %v", err)
	}
	healthService := services.NewHealthService(pool, redisClient, workerPool, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:          cfg,
		JWTValidator:    jwtValidator,
		RateLimiter:     services.NewRateLimitService(redisClient),
		SummaryHandler:  handlers.NewSummaryHandler(summaryService),
		ReportHandler:   reportHandler,
		CurrencyHandler: handlers.NewCurrencyHandler(currencyService, scheduler),
		HealthHandler:   handlers.NewHealthHandler(healthService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("HTTP server failed", "error", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	}
	if cfg.Currency.SchedulerEnabled {
		scheduler.Stop(shutdownCtx)
	}
	<-dispatcherDone
	// Deliveries cut short here stay leased in the outbox and are retried
	// once the lease expires.
	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Worker pool did not drain in time", "error", err)
	}
	log.Info("Server stopped")
}
