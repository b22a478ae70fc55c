package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amoura-app/amoura-backend/api/routes"
	"github.com/amoura-app/amoura-backend/internal/admins"
	"github.com/amoura-app/amoura-backend/internal/bookings"
	"github.com/amoura-app/amoura-backend/internal/ledger"
	"github.com/amoura-app/amoura-backend/internal/settlement"
	"github.com/amoura-app/amoura-backend/internal/wallets"
	"github.com/amoura-app/amoura-backend/pkg/auth/session"
	"github.com/amoura-app/amoura-backend/pkg/config"
	"github.com/amoura-app/amoura-backend/pkg/db"
	"github.com/amoura-app/amoura-backend/pkg/logger"
	"github.com/amoura-app/amoura-backend/pkg/metrics"
	"github.com/amoura-app/amoura-backend/pkg/migrate"
	"github.com/amoura-app/amoura-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	bookingsRepo := bookings.NewRepository(dbClient.DB())
	walletsRepo := wallets.NewRepository(dbClient.DB())
	historyRepo := ledger.NewRepository(dbClient.DB())
	adminsRepo := admins.NewRepository(dbClient.DB())

	if err := admins.EnsureBootstrapAdmin(context.Background(), adminsRepo, cfg, logg); err != nil {
		logg.Error(context.Background(), "failed to seed bootstrap admin", err)
		os.Exit(1)
	}

	settlementMetrics := metrics.NewSettlementMetrics(prometheus.DefaultRegisterer)

	settlementService, err := settlement.NewService(bookingsRepo, walletsRepo, historyRepo, dbClient, settlementMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(historyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	walletsService, err := wallets.NewService(walletsRepo, historyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallets service", err)
		os.Exit(1)
	}

	adminsService, err := admins.NewService(adminsRepo, sessionManager, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admins service", err)
		os.Exit(1)
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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Session:    sessionManager,
			Admins:     adminsService,
			Settlement: settlementService,
			Bookings:   bookingsRepo,
			Ledger:     ledgerService,
			Wallets:    walletsService,
			Metrics:    promhttp.Handler(),
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
		logg.Info(ctx, "shutdown signal received, draining")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
