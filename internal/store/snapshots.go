package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Snapshot is one catalog row describing an archived export.
type Snapshot struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"document_id"`
	SheetName   string    `json:"sheet_name"`
	FetchedAt   time.Time `json:"fetched_at"`
	Digest      string    `json:"digest"`
	BlobKey     string    `json:"blob_key"`
	SizeBytes   int64     `json:"size_bytes"`
	RowCount    int       `json:"row_count"`
	ColumnCount int       `json:"column_count"`
}

// SnapshotStore abstracts catalog persistence.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snap *Snapshot) error
	LatestSnapshot(ctx context.Context, documentID, sheetName string) (*Snapshot, error)
	ListSnapshots(ctx context.Context, documentID, sheetName string, limit int) ([]Snapshot, error)
	PruneSnapshots(ctx context.Context, documentID, sheetName string, keep int) ([]string, error)
}

var _ SnapshotStore = (*Store)(nil)

const snapshotColumns = "id, document_id, sheet_name, fetched_at, digest, blob_key, size_bytes, row_count, column_count"

// InsertSnapshot records snap and sets its ID.
func (s *Store) InsertSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is required")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (document_id, sheet_name, fetched_at, digest, blob_key, size_bytes, row_count, column_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.DocumentID, snap.SheetName, formatTime(snap.FetchedAt), snap.Digest, snap.BlobKey,
		snap.SizeBytes, snap.RowCount, snap.ColumnCount,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}
	snap.ID = id
	return nil
}

// LatestSnapshot returns the newest snapshot of a sheet, or nil when none exists.
func (s *Store) LatestSnapshot(ctx context.Context, documentID, sheetName string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+snapshotColumns+" FROM snapshots WHERE document_id = ? AND sheet_name = ? ORDER BY fetched_at DESC, id DESC LIMIT 1",
		documentID, sheetName,
	)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns up to limit snapshots of a sheet, newest first. A
// non-positive limit returns all of them.
func (s *Store) ListSnapshots(ctx context.Context, documentID, sheetName string, limit int) ([]Snapshot, error) {
	query := "SELECT " + snapshotColumns + " FROM snapshots WHERE document_id = ? AND sheet_name = ? ORDER BY fetched_at DESC, id DESC"
	args := []any{documentID, sheetName}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

// PruneSnapshots deletes all but the newest keep snapshots of a sheet and
// returns the blob keys no longer referenced by any snapshot.
func (s *Store) PruneSnapshots(ctx context.Context, documentID, sheetName string, keep int) ([]string, error) {
	if keep < 1 {
		return nil, fmt.Errorf("keep must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, blob_key FROM snapshots WHERE document_id = ? AND sheet_name = ?
		 ORDER BY fetched_at DESC, id DESC LIMIT -1 OFFSET ?`,
		documentID, sheetName, keep,
	)
	if err != nil {
		return nil, fmt.Errorf("select expired snapshots: %w", err)
	}
	ids, candidates, err := collectExpired(rows)
	if err != nil {
		return nil, fmt.Errorf("select expired snapshots: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id); err != nil {
			return nil, fmt.Errorf("delete snapshot %d: %w", id, err)
		}
	}

	var orphaned []string
	for key := range candidates {
		var refs int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots WHERE blob_key = ?", key).Scan(&refs); err != nil {
			return nil, fmt.Errorf("count blob refs: %w", err)
		}
		if refs == 0 {
			orphaned = append(orphaned, key)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return orphaned, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// rowIterator is the subset of *sql.Rows used by collectExpired.
type rowIterator interface {
	rowScanner
	Next() bool
	Err() error
	Close() error
}

// collectExpired drains (id, blob_key) rows and closes them. An iteration
// error is returned rather than read as an empty result.
func collectExpired(rows rowIterator) ([]int64, map[string]struct{}, error) {
	defer rows.Close()

	var ids []int64
	keys := make(map[string]struct{})
	for rows.Next() {
		var id int64
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		keys[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, nil, err
	}
	return ids, keys, nil
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snap Snapshot
	var fetchedAt string
	if err := row.Scan(&snap.ID, &snap.DocumentID, &snap.SheetName, &fetchedAt, &snap.Digest,
		&snap.BlobKey, &snap.SizeBytes, &snap.RowCount, &snap.ColumnCount); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
	snap.FetchedAt = t
	return &snap, nil
}

// formatTime stores timestamps as fixed-width UTC so text ordering matches time ordering.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
