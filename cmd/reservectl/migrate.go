package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reservation-system/pkg/database/postgresql"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or inspect the embedded database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrate("up"),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE:  runMigrate("down"),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations are applied",
	RunE:  runMigrate("status"),
}

func runMigrate(command string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadEnv(cmd)
		defer logger.Sync()

		ctx := commandContext(cmd)
		pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgresql.Migrate(ctx, pool, command, args...); err != nil {
			return err
		}
		fmt.Printf("migrate %s: done\n", command)
		return nil
	}
}
