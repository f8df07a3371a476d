package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
			if err != nil {
				return fmt.Errorf("failed to open migration connection: %w", err)
			}
			defer sqlDB.Close()

			if !statusOnly {
				if err := database.RunMigrations(sqlDB, logger); err != nil {
					return err
				}
			}

			v, err := database.MigrationVersion(sqlDB, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case !v.Applied:
				fmt.Fprintln(out, "No migrations applied")
			case v.Dirty:
				fmt.Fprintf(out, "Schema version %d (dirty)\n", v.Version)
			default:
				fmt.Fprintf(out, "Schema version %d\n", v.Version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "Only report the current schema version")
	return cmd
}
