package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sheetdash/internal/blobstore"
	"sheetdash/internal/config"
	"sheetdash/internal/dataset"
	"sheetdash/internal/server"
	"sheetdash/internal/sheet"
	"sheetdash/internal/snapshot"
	"sheetdash/internal/store"
	"sheetdash/internal/table"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the sheetdash API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if cfg.Sheet.DocumentID == "" {
		return fmt.Errorf("sheet.document_id is required (set SHEETDASH_DOCUMENT_ID or GOOGLE_SHEET_ID)")
	}

	logger := slog.Default().With("component", "server")

	addr, err := server.ListenAddr(cfg.APIURL)
	if err != nil {
		return err
	}

	parseOpts := table.ParseOptions{MaxColumns: cfg.Sheet.MaxColumns}
	cacheOpts := dataset.Options{
		DocumentID: cfg.Sheet.DocumentID,
		SheetName:  cfg.Sheet.SheetName,
		TTL:        cfg.Cache.TTL.Duration,
		Parse:      parseOpts,
		Coalesce:   cfg.Cache.CoalesceRefresh,
		Logger:     slog.Default().With("component", "cache"),
	}

	var (
		archive *snapshot.Archive
		catalog server.InfoSource
	)
	if cfg.Archive.Enabled {
		if cfg.DBPath == "" {
			return fmt.Errorf("db path is required when the archive is enabled")
		}
		logger.Info("opening database", "path", cfg.DBPath)
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		bs, err := blobstore.NewLocalCAS(cfg.Archive.BlobDir)
		if err != nil {
			return err
		}

		archive = snapshot.New(st, bs, snapshot.Options{
			DocumentID: cfg.Sheet.DocumentID,
			SheetName:  cfg.Sheet.SheetName,
			Keep:       cfg.Archive.Keep,
			Logger:     slog.Default().With("component", "archive"),
		})
		cacheOpts.OnRefresh = archive.Hook()
		catalog = st
	}

	fetcher := sheet.NewHTTPFetcher(cfg.Sheet.ExportURL, cfg.Sheet.FetchTimeout.Duration)
	cache := dataset.New(fetcher, cacheOpts)

	if archive != nil {
		restored, fetchedAt, ok, err := archive.Restore(ctx, parseOpts)
		switch {
		case err != nil:
			logger.Warn("restore snapshot failed", "error", err)
		case ok:
			cache.Seed(restored, fetchedAt)
			logger.Info("restored snapshot", "fetched_at", fetchedAt, "rows", restored.Len())
		}
	}

	srv := server.New(server.Options{
		Addr:            addr,
		Cache:           cache,
		Archive:         archive,
		Catalog:         catalog,
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		Version:         version,
		Logger:          logger,
	})
	return srv.ListenAndServe(ctx)
}
