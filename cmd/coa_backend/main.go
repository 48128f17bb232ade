package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/orsa-labs/coa_ledger/internal/adapters/ledger/binledger"
	"github.com/orsa-labs/coa_ledger/internal/adapters/ledger/grpcledger"
	"github.com/orsa-labs/coa_ledger/internal/core/ports/ledger"
	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
	"github.com/orsa-labs/coa_ledger/internal/core/services"
	"github.com/orsa-labs/coa_ledger/internal/handlers"
	"github.com/orsa-labs/coa_ledger/internal/middleware"
	"github.com/orsa-labs/coa_ledger/internal/platform/authz"
	"github.com/orsa-labs/coa_ledger/internal/platform/config"
	"github.com/orsa-labs/coa_ledger/internal/platform/ledgerauth"
	"github.com/orsa-labs/coa_ledger/internal/repositories/coastore"
	"github.com/orsa-labs/coa_ledger/internal/repositories/database/pgsql"
	"github.com/orsa-labs/coa_ledger/pkg/database"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection pool for application use
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established")

	if cfg.RunMigrations {
		if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Cache client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to parse REDIS_URL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cache := redis.NewClient(redisOpts)
	defer cache.Close()
	if err := cache.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to ping redis", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Currency snapshot with hot reload
	currencyConfig, err := config.NewCurrencyConfig(cfg.CurrenciesFile)
	if err != nil {
		logger.Error("Failed to load currency configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	authorizer, err := authz.NewStaticAuthorizer(cfg.RolesFile)
	if err != nil {
		logger.Error("Failed to load role configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	backend, err := newLedgerBackend(ctx, cfg, currencyConfig)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			logger.Error("Error closing ledger backend", slog.String("error", cerr.Error()))
		}
	}()
	logger.Info("Ledger backend ready", slog.String("backend", cfg.LedgerBackend))

	store := coastore.NewCachedCoaStore(cache, pgsql.NewPgxCoaAccountRepository(dbPool))
	coaService := services.NewCoaService(store, backend, authorizer, currencyConfig)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, coaService)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// newLedgerBackend selects the concrete backend once at startup; everything
// downstream holds only the adapter interface.
func newLedgerBackend(ctx context.Context, cfg *config.Config, currencies portssvc.CurrencySource) (ledger.Adapter, error) {
	switch cfg.LedgerBackend {
	case config.BackendBinary:
		return binledger.NewAdapter(cfg.BinaryLedgerAddr, cfg.LedgerConnectTimeout, currencies)
	case config.BackendGRPC:
		tokens := ledgerauth.NewTokenSource(ctx, cfg.LedgerTokenURL, cfg.LedgerClientID, cfg.LedgerClientSecret)
		return grpcledger.NewAdapter(cfg.GRPCLedgerTarget, cfg.LedgerConnectTimeout, tokens)
	default:
		return nil, errors.New("unknown ledger backend " + cfg.LedgerBackend)
	}
}

// runMigrations applies all pending "up" migrations through a temporary
// database/sql connection compatible with the main pool.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied successfully")
	}
	return nil
}
