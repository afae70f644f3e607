package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetdash/internal/api"
	"sheetdash/internal/config"
)

func newSummaryCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show sheet row and column counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Summary(cmd.Context())
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}

				lines := []string{
					fmt.Sprintf("sheet_id: %s", resp.SheetID),
					fmt.Sprintf("sheet_name: %s", resp.SheetName),
					fmt.Sprintf("total_rows: %d", resp.TotalRows),
					fmt.Sprintf("total_columns: %d", resp.TotalColumns),
					fmt.Sprintf("last_updated: %s", formatTime(resp.LastUpdated)),
					"columns:",
				}
				for _, col := range resp.Columns {
					lines = append(lines, fmt.Sprintf("  - %s (%s)", col.Name, col.Type))
				}
				return writeLines(lines)
			})
		},
	}
}
