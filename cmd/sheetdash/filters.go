package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sheetdash/internal/api"
	"sheetdash/internal/config"
)

func newFiltersCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "Show the values available for filtering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Filters(cmd.Context())
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}

				lines := []string{
					fmt.Sprintf("status: %s", strings.Join(resp.Status, ", ")),
					fmt.Sprintf("priority: %s", strings.Join(resp.Priority, ", ")),
					fmt.Sprintf("assignee: %s", strings.Join(resp.Assignee, ", ")),
				}
				if r := resp.CreatedDateRange; r != nil {
					lines = append(lines, fmt.Sprintf("created: %s .. %s", formatDate(&r.Min), formatDate(&r.Max)))
				}
				return writeLines(lines)
			})
		},
	}
}
