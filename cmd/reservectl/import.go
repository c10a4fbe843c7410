package main

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"reservation-system/internal/bootstrap"
	"reservation-system/internal/dto"
	"reservation-system/internal/services"
	"reservation-system/pkg/eventbus"
	"reservation-system/pkg/validation"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk upsert the catalogue from a CSV or XLSX file",
}

var importEquipmentCmd = &cobra.Command{
	Use:   "equipment <file>",
	Short: "Create or update equipment, matched on gageId",
	Args:  cobra.ExactArgs(1),
	RunE: runImport(func(reg *services.Registry, f *os.File, format string, cmd *cobra.Command) (*dto.BulkUpsertResultDTO, error) {
		rows, err := services.ParseEquipmentFile(f, format)
		if err != nil {
			return nil, err
		}
		return reg.Equipment.BulkUpsertEquipment(commandContext(cmd), rows)
	}),
}

var importCompaniesCmd = &cobra.Command{
	Use:   "companies <file>",
	Short: "Create or update companies, matched on name",
	Args:  cobra.ExactArgs(1),
	RunE: runImport(func(reg *services.Registry, f *os.File, format string, cmd *cobra.Command) (*dto.BulkUpsertResultDTO, error) {
		rows, err := services.ParseCompanyFile(f, format)
		if err != nil {
			return nil, err
		}
		return reg.Companies.BulkUpsertCompanies(commandContext(cmd), rows)
	}),
}

type importFunc func(reg *services.Registry, f *os.File, format string, cmd *cobra.Command) (*dto.BulkUpsertResultDTO, error)

func runImport(do importFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := validation.FormatFromPath(path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		cfg, logger := loadEnv(cmd)
		defer logger.Sync()

		storage, err := bootstrap.OpenStorage(commandContext(cmd), cfg, logger.Named("storage"))
		if err != nil {
			return err
		}
		defer storage.Close()

		bus := eventbus.New(logger.Named("events"))
		defer bus.Wait()
		reg := services.NewRegistry(storage.Repos, bus, clockwork.NewRealClock(), logger, cfg.Redis.RoleCacheTTL)

		res, err := do(reg, f, format, cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Created: %d\n", res.CreatedCount)
		fmt.Printf("Updated: %d\n", res.UpdatedCount)
		if len(res.Errors) > 0 {
			fmt.Printf("Rejected: %d\n", len(res.Errors))
			for _, e := range res.Errors {
				fmt.Printf("  row %d: %s\n", e.Row, e.Message)
			}
		}
		return nil
	}
}
