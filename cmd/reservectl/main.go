package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reservation-system/pkg/config"
	applogger "reservation-system/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "reservectl",
	Short:         "Operator tool for the equipment reservation service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("storage", "", "Override STORAGE_DRIVER (postgres|memory)")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	importCmd.AddCommand(importEquipmentCmd, importCompaniesCmd)

	seedCmd.Flags().String("admin-secret", "", "Credential to set on the demo admin")
	issueTokenCmd.Flags().Bool("check-user", true, "Refuse to sign for an unknown user")

	rootCmd.AddCommand(migrateCmd, seedCmd, importCmd, hashPasswordCmd, issueTokenCmd)
}

// loadEnv reads the configuration and builds a logger. The --storage flag
// wins over the environment.
func loadEnv(cmd *cobra.Command) (*config.Config, *zap.Logger) {
	cfg := config.New()
	if driver, _ := cmd.Flags().GetString("storage"); driver != "" {
		cfg.Storage.Driver = driver
	}
	return cfg, applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
