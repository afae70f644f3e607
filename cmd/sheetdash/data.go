package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sheetdash/internal/api"
	"sheetdash/internal/config"
)

type dataFlags struct {
	page      int
	pageSize  int
	sortBy    string
	sortOrder string
	search    string
	status    string
	priority  string
}

func (f dataFlags) values() url.Values {
	values := url.Values{}
	if f.page > 0 {
		values.Set("page", strconv.Itoa(f.page))
	}
	if f.pageSize > 0 {
		values.Set("page_size", strconv.Itoa(f.pageSize))
	}
	for key, value := range map[string]string{
		"sort_by":    f.sortBy,
		"sort_order": f.sortOrder,
		"search":     f.search,
		"status":     f.status,
		"priority":   f.priority,
	} {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}
	return values
}

func newDataCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	var flags dataFlags

	cmd := &cobra.Command{
		Use:   "data",
		Short: "List sheet rows with search, filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Data(cmd.Context(), flags.values())
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}

				lines := make([]string, 0, len(resp.Data)+1)
				for _, row := range resp.Data {
					lines = append(lines, formatRowLine(row))
				}
				p := resp.Pagination
				lines = append(lines, fmt.Sprintf("page %d/%d (%d records)", p.CurrentPage, p.TotalPages, p.TotalRecords))
				if len(resp.Filters.Applied) > 0 {
					lines = append(lines, "filters: "+strings.Join(resp.Filters.Applied, ", "))
				}
				return writeLines(lines)
			})
		},
	}

	cmd.Flags().IntVar(&flags.page, "page", 0, "page number (1-based)")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "rows per page")
	cmd.Flags().StringVar(&flags.sortBy, "sort-by", "", "column to sort by (default Key)")
	cmd.Flags().StringVar(&flags.sortOrder, "sort-order", "", "asc or desc")
	cmd.Flags().StringVar(&flags.search, "search", "", "case-insensitive text search")
	cmd.Flags().StringVar(&flags.status, "status", "", "exact Status value")
	cmd.Flags().StringVar(&flags.priority, "priority", "", "exact Priority value")
	return cmd
}
