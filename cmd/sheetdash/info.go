package main

import (
	"github.com/spf13/cobra"

	"sheetdash/internal/api"
	"sheetdash/internal/config"
)

func newInfoCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server, cache and archive info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}

				_ = writePlain("version: %s\n", resp.Version)
				_ = writePlain("document_id: %s\n", resp.DocumentID)
				_ = writePlain("sheet_name: %s\n", resp.SheetName)
				_ = writePlain("cache_ttl_seconds: %s\n", formatNumber(resp.CacheTTLSeconds))
				if resp.CachedAt != nil {
					_ = writePlain("cached_at: %s\n", formatTime(*resp.CachedAt))
				}
				if resp.CacheAgeSeconds != nil {
					_ = writePlain("cache_age_seconds: %.0f\n", *resp.CacheAgeSeconds)
				}
				_ = writePlain("archive_enabled: %t\n", resp.ArchiveEnabled)
				if resp.ArchiveEnabled {
					_ = writePlain("db_path: %s\n", cfg.DBPath)
					_ = writePlain("schema_version: %d\n", resp.SchemaVersion)
					_ = writePlain("snapshots: %d\n", resp.Snapshots)
				}
				return nil
			})
		},
	}
}
