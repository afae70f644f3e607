// Package snapshot archives raw sheet exports and restores the newest one at
// startup.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"sheetdash/internal/blobstore"
	"sheetdash/internal/dataset"
	"sheetdash/internal/store"
	"sheetdash/internal/table"
)

// DefaultKeep is the retention used when none is configured.
const DefaultKeep = 20

// Archive pairs the blob CAS with the SQLite catalog.
type Archive struct {
	catalog    store.SnapshotStore
	blobs      blobstore.Store
	documentID string
	sheetName  string
	keep       int
	logger     *slog.Logger
}

// Options configures an Archive.
type Options struct {
	DocumentID string
	SheetName  string
	Keep       int
	Logger     *slog.Logger
}

// New returns an archive scoped to one document and sheet.
func New(catalog store.SnapshotStore, blobs blobstore.Store, opts Options) *Archive {
	if opts.Keep <= 0 {
		opts.Keep = DefaultKeep
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{
		catalog:    catalog,
		blobs:      blobs,
		documentID: opts.DocumentID,
		sheetName:  opts.SheetName,
		keep:       opts.Keep,
		logger:     logger,
	}
}

// Save stores the raw export, records it in the catalog and applies retention.
// Retention failures are logged; the snapshot itself is already durable.
func (a *Archive) Save(ctx context.Context, snap dataset.Snapshot) (*store.Snapshot, error) {
	put, err := a.blobs.Put(ctx, strings.NewReader(snap.Raw))
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	rec := &store.Snapshot{
		DocumentID: a.documentID,
		SheetName:  a.sheetName,
		FetchedAt:  snap.FetchedAt,
		Digest:     put.Digest,
		BlobKey:    put.Key,
		SizeBytes:  put.SizeBytes,
	}
	if snap.Table != nil {
		rec.RowCount = snap.Table.Len()
		rec.ColumnCount = len(snap.Table.Columns)
	}
	if err := a.catalog.InsertSnapshot(ctx, rec); err != nil {
		return nil, err
	}
	a.logger.Debug("snapshot archived", "id", rec.ID, "digest", rec.Digest, "bytes", rec.SizeBytes)

	orphaned, err := a.catalog.PruneSnapshots(ctx, a.documentID, a.sheetName, a.keep)
	if err != nil {
		a.logger.Warn("snapshot retention failed", "error", err)
		return rec, nil
	}
	for _, key := range orphaned {
		if err := a.blobs.Delete(ctx, key); err != nil {
			a.logger.Warn("delete expired snapshot blob failed", "blob_key", key, "error", err)
		}
	}
	return rec, nil
}

// Hook adapts Save to the dataset cache refresh hook.
func (a *Archive) Hook() dataset.RefreshHook {
	return func(ctx context.Context, snap dataset.Snapshot) error {
		_, err := a.Save(ctx, snap)
		return err
	}
}

// Restore parses the newest archived export. It reports false when the
// catalog is empty.
func (a *Archive) Restore(ctx context.Context, opts table.ParseOptions) (*table.Table, time.Time, bool, error) {
	rec, err := a.catalog.LatestSnapshot(ctx, a.documentID, a.sheetName)
	if err != nil {
		return nil, time.Time{}, false, err
	}
	if rec == nil {
		return nil, time.Time{}, false, nil
	}

	rc, err := a.blobs.Open(ctx, rec.BlobKey)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("open snapshot %d: %w", rec.ID, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("read snapshot %d: %w", rec.ID, err)
	}
	if got := blobstore.Digest(raw); got != rec.Digest {
		return nil, time.Time{}, false, fmt.Errorf("snapshot %d digest mismatch: want %s, got %s", rec.ID, rec.Digest, got)
	}

	tbl, err := table.ParseString(string(raw), opts)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("parse snapshot %d: %w", rec.ID, err)
	}
	return tbl, rec.FetchedAt, true, nil
}

// List returns up to limit catalog rows, newest first.
func (a *Archive) List(ctx context.Context, limit int) ([]store.Snapshot, error) {
	return a.catalog.ListSnapshots(ctx, a.documentID, a.sheetName, limit)
}
