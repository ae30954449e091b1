package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/casavia/dealerdesk-backend/internal/cron"
	"github.com/casavia/dealerdesk-backend/internal/inventory"
	"github.com/casavia/dealerdesk-backend/internal/scrape"
	syncsvc "github.com/casavia/dealerdesk-backend/internal/sync"
	"github.com/casavia/dealerdesk-backend/internal/vendors"
	"github.com/casavia/dealerdesk-backend/pkg/config"
	"github.com/casavia/dealerdesk-backend/pkg/db"
	"github.com/casavia/dealerdesk-backend/pkg/imagestore"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
	"github.com/casavia/dealerdesk-backend/pkg/metrics"
	"github.com/casavia/dealerdesk-backend/pkg/migrate"
	"github.com/casavia/dealerdesk-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	imageClient, err := imagestore.NewClient(context.Background(), cfg.ImageStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap image store", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	vendorRepo := vendors.NewRepository(gdb)
	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	syncService := syncsvc.NewService(
		syncsvc.NewRepository(gdb),
		vendorRepo,
		scrape.NewFetcher(cfg.Sync.FetchTimeout, cfg.Sync.UserAgent, logg),
		scrape.NewExtractor(cfg.Sync.MaxImages),
		syncsvc.NewRelay(imageClient, logg),
		syncsvc.NewVendorLock(redisClient, cfg.Sync.LockTTL),
		syncMetrics,
		logg,
		cfg.Sync.RequestDelay,
	)

	vendorSyncJob, err := cron.NewVendorSyncJob(cron.VendorSyncJobParams{
		Logger:  logg,
		Vendors: vendors.NewService(vendorRepo),
		Runner:  syncService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor sync job", err)
		os.Exit(1)
	}

	imageCleanupJob, err := cron.NewImageCleanupJob(cron.ImageCleanupJobParams{
		Logger:    logg,
		Store:     imageClient,
		Inventory: inventory.NewRepository(gdb),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create image cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, cfg.Cron.LockKey, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(vendorSyncJob, imageCleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
