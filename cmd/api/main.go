package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defactolounge/lounge-backend/api/routes"
	"github.com/defactolounge/lounge-backend/internal/audit"
	"github.com/defactolounge/lounge-backend/internal/gate"
	"github.com/defactolounge/lounge-backend/internal/intents"
	"github.com/defactolounge/lounge-backend/internal/messaging"
	"github.com/defactolounge/lounge-backend/internal/orders"
	"github.com/defactolounge/lounge-backend/internal/staff"
	"github.com/defactolounge/lounge-backend/internal/tables"
	"github.com/defactolounge/lounge-backend/internal/views"
	"github.com/defactolounge/lounge-backend/pkg/auth/session"
	"github.com/defactolounge/lounge-backend/pkg/config"
	"github.com/defactolounge/lounge-backend/pkg/db"
	"github.com/defactolounge/lounge-backend/pkg/logger"
	"github.com/defactolounge/lounge-backend/pkg/metrics"
	"github.com/defactolounge/lounge-backend/pkg/migrate"
	"github.com/defactolounge/lounge-backend/pkg/redis"
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

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	tablesService, err := tables.NewService(tables.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create tables service", err)
		os.Exit(1)
	}

	intentsService, err := intents.NewService(intents.NewRepository(dbClient.DB()), dbClient, auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create intents service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, auditService, tablesService, intentsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	gateService, err := gate.NewService(gate.Params{
		Tx:        dbClient,
		Orders:    ordersService,
		Intents:   intentsService,
		Tables:    tablesService,
		Auditor:   auditService,
		Messenger: messaging.NewBuilder(cfg.Messaging),
		Metrics:   metrics.NewGateMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gate service", err)
		os.Exit(1)
	}

	viewsService, err := views.NewService(views.Params{
		Orders:       ordersService,
		Intents:      intentsService,
		Tables:       tablesService,
		Audit:        auditService,
		Cache:        redisClient,
		CacheTTL:     cfg.Views.PollInterval,
		AuditFeedLen: cfg.Views.AuditFeedLen,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create views service", err)
		os.Exit(1)
	}

	staffService, err := staff.NewService(staff.Params{
		Repo:     staff.NewRepository(dbClient.DB()),
		Sessions: sessionManager,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create staff service", err)
		os.Exit(1)
	}

	if err := tablesService.EnsureDefaultLayout(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to seed table layout", err)
		os.Exit(1)
	}
	if err := staffService.EnsureSeedUsers(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to seed staff users", err)
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
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Metrics:  prometheus.DefaultGatherer,
			Staff:    staffService,
			Orders:   ordersService,
			Gate:     gateService,
			Tables:   tablesService,
			Views:    viewsService,
			Audit:    auditService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "error during shutdown", err)
		}
	}
}
