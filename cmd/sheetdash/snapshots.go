package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetdash/internal/api"
	"sheetdash/internal/config"
)

func newSnapshotsCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List archived sheet exports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must be >= 0")
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Snapshots(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}
				if !resp.Enabled {
					return writePlain("archive disabled\n")
				}
				if len(resp.Snapshots) == 0 {
					return writePlain("no snapshots\n")
				}

				lines := make([]string, 0, len(resp.Snapshots))
				for _, snap := range resp.Snapshots {
					lines = append(lines, fmt.Sprintf("%d  %s  %d rows  %d bytes  %s",
						snap.ID, formatTime(snap.FetchedAt), snap.RowCount, snap.SizeBytes, shortDigest(snap.Digest)))
				}
				return writeLines(lines)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum snapshots to show (0 uses the server default)")
	return cmd
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
