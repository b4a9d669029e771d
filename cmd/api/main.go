package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvthanh/garahub-backend/api/routes"
	"github.com/dvthanh/garahub-backend/internal/backup"
	"github.com/dvthanh/garahub-backend/internal/catalog"
	"github.com/dvthanh/garahub-backend/internal/customers"
	"github.com/dvthanh/garahub-backend/internal/inventory"
	"github.com/dvthanh/garahub-backend/internal/invoices"
	"github.com/dvthanh/garahub-backend/internal/ledger"
	"github.com/dvthanh/garahub-backend/internal/lineitems"
	"github.com/dvthanh/garahub-backend/internal/quotations"
	"github.com/dvthanh/garahub-backend/internal/repairs"
	"github.com/dvthanh/garahub-backend/internal/sequence"
	"github.com/dvthanh/garahub-backend/internal/vehicles"
	"github.com/dvthanh/garahub-backend/pkg/config"
	"github.com/dvthanh/garahub-backend/pkg/db"
	"github.com/dvthanh/garahub-backend/pkg/logger"
	"github.com/dvthanh/garahub-backend/pkg/migrate"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
	pkgredis "github.com/dvthanh/garahub-backend/pkg/redis"
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

	pingers := map[string]db.Pinger{"database": dbClient}

	// Redis only backs the idempotency guard; the API runs without it.
	var idempotencyStore pkgredis.IdempotencyStore
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, redisErr := pkgredis.New(context.Background(), cfg.Redis, logg)
		if redisErr != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", redisErr)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idempotencyStore = redisClient
		pingers["redis"] = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency guard disabled")
	}

	svcs, err := buildServices(dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, pingers, idempotencyStore, svcs),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(dbClient *db.Client, logg *logger.Logger) (routes.Services, error) {
	conn := dbClient.DB()

	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)
	codes := sequence.NewGenerator()
	linesRepo := lineitems.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	customerSvc, err := customers.NewService(customers.NewRepository(conn), dbClient, outboxSvc, codes)
	if err != nil {
		return routes.Services{}, err
	}

	vehicleSvc, err := vehicles.NewService(vehicles.NewRepository(conn), dbClient, outboxSvc, codes)
	if err != nil {
		return routes.Services{}, err
	}

	catalogSvc, err := catalog.NewService(catalogRepo, dbClient, outboxSvc, codes)
	if err != nil {
		return routes.Services{}, err
	}

	inventorySvc, err := inventory.NewService(inventoryRepo, dbClient, outboxSvc, codes, ledgerSvc)
	if err != nil {
		return routes.Services{}, err
	}

	quotationSvc, err := quotations.NewService(quotations.NewRepository(conn), linesRepo, inventoryRepo, catalogRepo, dbClient, outboxSvc, codes)
	if err != nil {
		return routes.Services{}, err
	}

	repairSvc, err := repairs.NewService(repairs.NewRepository(conn), linesRepo, inventoryRepo, catalogRepo, inventorySvc, dbClient, outboxSvc, codes)
	if err != nil {
		return routes.Services{}, err
	}

	invoiceSvc, err := invoices.NewService(invoices.NewRepository(conn), linesRepo, dbClient, outboxSvc, codes)
	if err != nil {
		return routes.Services{}, err
	}

	backupSvc, err := backup.NewService(backup.NewRepository(conn), dbClient, outboxSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Customers:  customerSvc,
		Vehicles:   vehicleSvc,
		Catalog:    catalogSvc,
		Inventory:  inventorySvc,
		Ledger:     ledgerSvc,
		Quotations: quotationSvc,
		Repairs:    repairSvc,
		Invoices:   invoiceSvc,
		Backup:     backupSvc,
	}, nil
}
