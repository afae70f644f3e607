package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetdash/internal/config"
	"sheetdash/internal/store"
)

func newMigrateCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect snapshot catalog migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !inspect {
				st, err := store.Open(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				if err := st.Close(); err != nil {
					return err
				}
			}

			db, err := store.OpenRaw(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			plan, err := store.MigrationPlan(db)
			if err != nil {
				return fmt.Errorf("inspect migrations: %w", err)
			}
			if machine() {
				return writeStructured(plan)
			}

			lines := []string{
				fmt.Sprintf("Current version: %d", plan.CurrentVersion),
				fmt.Sprintf("Available version: %d", plan.AvailableVersion),
			}
			if len(plan.Pending) == 0 {
				lines = append(lines, "No pending migrations.")
			} else {
				lines = append(lines, fmt.Sprintf("Pending migrations: %d", len(plan.Pending)))
				for _, m := range plan.Pending {
					lines = append(lines, fmt.Sprintf("  %d: %s", m.Version, m.Description))
				}
			}
			return writeLines(lines)
		},
	}

	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status without applying")
	cmd.Flags().BoolVar(&inspect, "dry-run", false, "alias for --inspect")
	return cmd
}
