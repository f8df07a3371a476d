package main

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/config"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/repositories"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/retry"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	envFile string
	verbose bool
)

// app holds what a command needs once the database is reachable.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *database.DB
	imports   services.ImportService
	inventory services.InventoryService
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cbls",
		Short:         "Cable inventory tracker",
		Long:          "Import inventory exports into the per-datacenter ledger and query current stock",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before configuration")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newImportCmd(),
		newInventoryCmd(),
		newHistoryCmd(),
		newImportsCmd(),
		newMigrateCmd(),
	)
	return root
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load(envFile)

	cfg, err := config.Load(Version)
	if err != nil {
		return nil, nil, err
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Encoding = "console"
	if !verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// openApp connects to the database and wires the services. The returned
// cleanup closes the pool.
func openApp(ctx context.Context) (*app, func(), error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := retry.DoWithResult(ctx, retry.ConnectConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: 4,
		})
	})
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	catalogRepo := repositories.NewCatalogRepository()
	ledgerRepo := repositories.NewLedgerRepository()
	settings := services.NewSettingsService(cfg.DataDir, logger)

	a := &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		imports: services.NewImportService(database.NewTxManager(),
			catalogRepo, ledgerRepo, repositories.NewImportRepository(), logger),
		inventory: services.NewInventoryService(repositories.NewInventoryRepository(),
			catalogRepo, ledgerRepo, settings, logger),
	}
	cleanup := func() {
		db.Close()
		_ = logger.Sync()
	}
	return a, cleanup, nil
}

// scoped runs fn with a pooled connection attached to ctx.
func (a *app) scoped(ctx context.Context, fn func(ctx context.Context) error) error {
	scopedCtx, release, err := database.NewScopeProvider(a.db).WithScope(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer release()
	return fn(scopedCtx)
}

// datacenterFlag converts the --datacenter flag into the read filter: not
// given means every datacenter, given (even empty) means that datacenter.
func datacenterFlag(cmd *cobra.Command, value string) *string {
	if !cmd.Flags().Changed("datacenter") {
		return nil
	}
	return &value
}
