package main

import (
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reservation-system/internal/bootstrap"
	"reservation-system/internal/listeners"
	"reservation-system/internal/services"
	"reservation-system/pkg/eventbus"
	"reservation-system/seeders"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo users, companies, equipment and reservations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadEnv(cmd)
		defer logger.Sync()

		ctx := commandContext(cmd)
		storage, err := bootstrap.OpenStorage(ctx, cfg, logger.Named("storage"))
		if err != nil {
			return err
		}
		defer storage.Close()

		clock := clockwork.NewRealClock()
		bus := eventbus.New(logger.Named("events"))
		listeners.NewAuditListener(logger.Named("audit")).Register(bus)
		defer bus.Wait()

		reg := services.NewRegistry(storage.Repos, bus, clock, logger, cfg.Redis.RoleCacheTTL)
		secret, _ := cmd.Flags().GetString("admin-secret")

		if err := seeders.New(reg, clock, logger.Named("seed")).Run(ctx, secret); err != nil {
			logger.Error("seeding failed", zap.Error(err))
			return err
		}
		return nil
	},
}
