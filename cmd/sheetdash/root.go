package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sheetdash/internal/config"
	"sheetdash/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "sheetdash",
		Short:         "Sheetdash serves a spreadsheet of issues as a read-only dashboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}
			if yamlOutput {
				outputFormatter = format.YAMLFormatter{}
			}

			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "output YAML")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	machine := func() bool { return jsonOutput || yamlOutput }

	cmd.AddCommand(
		newSrvCmd(cfg),
		newSummaryCmd(cfg, machine),
		newDataCmd(cfg, machine),
		newFiltersCmd(cfg, machine),
		newSprintCmd(cfg, machine),
		newRefreshCmd(cfg, machine),
		newSnapshotsCmd(cfg, machine),
		newInfoCmd(cfg, machine),
		newMigrateCmd(cfg, machine),
		newConfigCmd(cfg),
	)

	return cmd
}
