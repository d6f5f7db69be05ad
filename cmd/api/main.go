package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IhuzaApp/groceryrw-backend/api/routes"
	"github.com/IhuzaApp/groceryrw-backend/internal/commission"
	"github.com/IhuzaApp/groceryrw-backend/internal/orders"
	"github.com/IhuzaApp/groceryrw-backend/internal/wallet"
	"github.com/IhuzaApp/groceryrw-backend/pkg/config"
	"github.com/IhuzaApp/groceryrw-backend/pkg/db"
	"github.com/IhuzaApp/groceryrw-backend/pkg/logger"
	"github.com/IhuzaApp/groceryrw-backend/pkg/metrics"
	"github.com/IhuzaApp/groceryrw-backend/pkg/migrate"
	"github.com/IhuzaApp/groceryrw-backend/pkg/outbox"
	"github.com/IhuzaApp/groceryrw-backend/pkg/pubsub"
	"github.com/IhuzaApp/groceryrw-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	// The API only writes outbox rows; cmd/outbox-publisher owns the pubsub
	// topics. The client here is wired purely for the readiness probe and is
	// optional outside production.
	var pubsubPinger *pubsub.Client
	if client, err := pubsub.NewClient(context.Background(), cfg.PubSub, logg); err != nil {
		if cfg.App.IsProd() {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		logg.Warn(context.Background(), "pubsub unavailable, readiness probe will skip it")
	} else {
		pubsubPinger = client
		defer func() {
			if err := client.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	commissionRepo := commission.NewRepository(dbClient.DB())
	commissionSvc, err := commission.NewService(commissionRepo, logg, cfg.Commission.DefaultPercentage)
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
		os.Exit(1)
	}

	walletSvc, err := wallet.NewService(wallet.Config{
		Repo:           wallet.NewRepository(dbClient.DB()),
		OrdersRepo:     ordersRepo,
		OrdersService:  ordersSvc,
		CommissionRepo: commissionRepo,
		Commission:     commissionSvc,
		Tx:             dbClient,
		Outbox:         outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Metrics:        metrics.NewWalletMetrics(prometheus.DefaultRegisterer),
		PayoutEstimate: cfg.Payout.EstimatedProcessingTime,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	deps := routes.Deps{
		Config: cfg,
		Logger: logg,
		DB:     dbClient,
		Redis:  redisClient,
		Wallet: walletSvc,
	}
	if pubsubPinger != nil {
		deps.PubSub = pubsubPinger
	}

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
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown error", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
