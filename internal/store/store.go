// Package store persists the snapshot catalog in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS          = 5000
	defaultMaxOpenConns    = 1
	defaultConnMaxLifetime = 5 * time.Minute

	maxOpenConnsEnvKey    = "SHEETDASH_DB_MAX_OPEN_CONNS"
	connMaxLifetimeEnvKey = "SHEETDASH_DB_CONN_MAX_LIFETIME"
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database and applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := OpenRaw(path)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenRaw opens and configures the database without migrating it.
func OpenRaw(path string) (*sql.DB, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Info describes the catalog database.
type Info struct {
	SchemaVersion int `json:"schema_version"`
	Snapshots     int `json:"snapshots"`
	Blobs         int `json:"blobs"`
}

// StoreInfo reports the schema version and catalog sizes.
func (s *Store) StoreInfo(ctx context.Context) (Info, error) {
	var info Info
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&info.SchemaVersion); err != nil {
		return info, fmt.Errorf("schema version: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(DISTINCT blob_key) FROM snapshots").Scan(&info.Snapshots, &info.Blobs); err != nil {
		return info, fmt.Errorf("count snapshots: %w", err)
	}
	return info, nil
}

// poolSettings sizes the database/sql pool. SQLite allows one writer, so the
// default is a single connection.
type poolSettings struct {
	maxOpen     int
	maxLifetime time.Duration
}

func poolSettingsFromEnv() poolSettings {
	ps := poolSettings{maxOpen: defaultMaxOpenConns, maxLifetime: defaultConnMaxLifetime}
	if n, ok := positiveIntEnv(maxOpenConnsEnvKey); ok {
		ps.maxOpen = n
	}
	if raw := strings.TrimSpace(os.Getenv(connMaxLifetimeEnvKey)); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			ps.maxLifetime = time.Duration(secs) * time.Second
		} else if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			ps.maxLifetime = d
		}
	}
	return ps
}

func positiveIntEnv(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func configureDB(db *sql.DB) error {
	for _, pragma := range []string{
		"journal_mode = WAL",
		"synchronous = NORMAL",
		fmt.Sprintf("busy_timeout = %d", busyTimeoutMS),
	} {
		if _, err := db.Exec("PRAGMA " + pragma); err != nil {
			return fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	ps := poolSettingsFromEnv()
	db.SetMaxOpenConns(ps.maxOpen)
	db.SetMaxIdleConns(ps.maxOpen)
	db.SetConnMaxLifetime(ps.maxLifetime)
	return nil
}

func sqliteDSN(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("db path is required")
	}
	return (&url.URL{Scheme: "file", Path: path}).String(), nil
}
