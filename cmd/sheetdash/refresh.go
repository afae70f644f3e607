package main

import (
	"github.com/spf13/cobra"

	"sheetdash/internal/api"
	"sheetdash/internal/config"
)

func newRefreshCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force the server to refetch the sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}
				return writePlain("refreshed %d rows, %d columns at %s\n", resp.Rows, resp.Columns, formatTime(resp.FetchedAt))
			})
		},
	}
}
