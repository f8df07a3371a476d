package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/config"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/handlers"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/logging"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/mcp"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/mcp/tools"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/middleware"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/repositories"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/retry"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("data_dir", cfg.DataDir),
		zap.Bool("mcp_enabled", cfg.MCP.Enabled))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := retry.DoWithResult(ctx, retry.ConnectConfig(), func() (*database.DB, error) {
		db, err := database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
			MinConnections: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			logger.Warn("Database not ready", zap.String("error", logging.SanitizeError(err)))
		}
		return db, err
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := migrate(cfg, logger); err != nil {
		return err
	}

	mux := http.NewServeMux()
	scope := handlers.ScopeMiddleware(database.WithScope(db, logger))
	txManager := database.NewTxManager()

	// Repositories
	catalogRepo := repositories.NewCatalogRepository()
	ledgerRepo := repositories.NewLedgerRepository()
	importRepo := repositories.NewImportRepository()
	inventoryRepo := repositories.NewInventoryRepository()
	datacenterRepo := repositories.NewDatacenterRepository()
	msfConfigRepo := repositories.NewMsfConfigRepository()
	erasureRepo := repositories.NewErasureRepository()

	// Services
	settingsService := services.NewSettingsService(cfg.DataDir, logger)
	importService := services.NewImportService(txManager, catalogRepo, ledgerRepo, importRepo, logger)
	inventoryService := services.NewInventoryService(inventoryRepo, catalogRepo, ledgerRepo, settingsService, logger)
	datacenterService := services.NewDatacenterService(txManager, datacenterRepo, ledgerRepo, logger)
	msfConfigService := services.NewMsfConfigService(msfConfigRepo)
	dataService := services.NewDataService(txManager, erasureRepo, logger)

	// Handlers
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewImportHandler(importService, cfg.Import, logger).RegisterRoutes(mux, scope)
	handlers.NewProductHandler(inventoryService, logger).RegisterRoutes(mux, scope)
	handlers.NewInventoryHandler(inventoryService, logger).RegisterRoutes(mux, scope)
	handlers.NewDatacenterHandler(datacenterService, logger).RegisterRoutes(mux, scope)
	handlers.NewMsfConfigHandler(msfConfigService, logger).RegisterRoutes(mux, scope)
	handlers.NewSettingsHandler(settingsService, logger).RegisterRoutes(mux)
	handlers.NewDataHandler(dataService, logger).RegisterRoutes(mux, scope)

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer(mcp.ServerName, cfg.Version, logger.Named("mcp"))
		tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version, db)
		tools.RegisterInventoryTools(mcpServer.MCP(), &tools.InventoryToolDeps{
			Scopes:    database.NewScopeProvider(db),
			Inventory: inventoryService,
			Imports:   importService,
			Logger:    logger.Named("mcp.tools"),
		})
		mux.Handle("/mcp", mcpServer.Handler())
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		tlsEnabled := cfg.TLSCertPath != ""
		logger.Info("Starting cbls-tracker",
			zap.String("addr", server.Addr),
			zap.Bool("tls", tlsEnabled),
			zap.String("version", cfg.Version))
		var err error
		if tlsEnabled {
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = server.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// migrate applies pending migrations. golang-migrate needs a database/sql handle.
func migrate(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
