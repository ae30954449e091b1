package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/casavia/dealerdesk-backend/api/controllers"
	"github.com/casavia/dealerdesk-backend/api/routes"
	"github.com/casavia/dealerdesk-backend/internal/inventory"
	"github.com/casavia/dealerdesk-backend/internal/leads"
	"github.com/casavia/dealerdesk-backend/internal/scrape"
	"github.com/casavia/dealerdesk-backend/internal/settings"
	"github.com/casavia/dealerdesk-backend/internal/staff"
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
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	vendorService := vendors.NewService(vendors.NewRepository(gdb))
	inventoryService := inventory.NewService(inventory.NewRepository(gdb), vendors.NewRepository(gdb))
	leadService := leads.NewService(leads.NewRepository(gdb))
	staffService := staff.NewService(staff.NewRepository(gdb))
	settingsService := settings.NewService(settings.NewRepository(gdb), redisClient, logg)

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	fetcher := scrape.NewFetcher(cfg.Sync.FetchTimeout, cfg.Sync.UserAgent, logg)
	relay := syncsvc.NewRelay(imageClient, logg)
	lock := syncsvc.NewVendorLock(redisClient, cfg.Sync.LockTTL)
	syncService := syncsvc.NewService(
		syncsvc.NewRepository(gdb),
		vendors.NewRepository(gdb),
		fetcher,
		scrape.NewExtractor(cfg.Sync.MaxImages),
		relay,
		lock,
		syncMetrics,
		logg,
		cfg.Sync.RequestDelay,
	)

	router := routes.NewRouter(routes.RouterParams{
		Config: cfg,
		Logger: logg,
		Pingers: map[string]controllers.Pinger{
			"db":          dbClient,
			"redis":       redisClient,
			"image_store": imageClient,
		},
		Inventory: inventoryService,
		Vendors:   vendorService,
		Sync:      syncService,
		Leads:     leadService,
		Staff:     staffService,
		Settings:  settingsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
