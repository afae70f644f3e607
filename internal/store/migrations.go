package store

import (
	"database/sql"
	"fmt"
	"slices"
)

// Migration represents a schema migration step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports the current and available migration versions.
type MigrationStatus struct {
	CurrentVersion   int             `json:"current_version"`
	AvailableVersion int             `json:"available_version"`
	Pending          []MigrationInfo `json:"pending"`
}

// MigrationInfo describes a single migration.
type MigrationInfo struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
}

// migrations is the ordered list of all schema migrations.
var migrations = []Migration{
	{
		Version:     1,
		Description: "snapshot catalog",
		SQL: `
CREATE TABLE IF NOT EXISTS snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  document_id TEXT NOT NULL,
  sheet_name TEXT NOT NULL,
  fetched_at TEXT NOT NULL,
  digest TEXT NOT NULL,
  blob_key TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  row_count INTEGER NOT NULL,
  column_count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_source_fetched ON snapshots(document_id, sheet_name, fetched_at DESC);
`,
	},
	{
		Version:     2,
		Description: "index blob keys for retention sweeps",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_snapshots_blob_key ON snapshots(blob_key);
`,
	},
}

const ledgerDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
);
`

// schemaState is what the database looks like before any migration runs.
type schemaState struct {
	hasCatalog bool
	hasLedger  bool
	recorded   int
}

// unversioned reports a snapshots table with no recorded migrations, as left
// by a catalog created by hand or by a build that predates the ledger.
func (s schemaState) unversioned() bool {
	return s.hasCatalog && (!s.hasLedger || s.recorded == 0)
}

func inspectSchema(db *sql.DB) (schemaState, error) {
	var st schemaState
	tableExists := func(name string) (bool, error) {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
		return n > 0, err
	}

	var err error
	if st.hasCatalog, err = tableExists("snapshots"); err != nil {
		return st, err
	}
	if st.hasLedger, err = tableExists("schema_migrations"); err != nil {
		return st, err
	}
	if st.hasLedger {
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&st.recorded); err != nil {
			return st, err
		}
	}
	return st, nil
}

func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

func orderedMigrations() []Migration {
	out := slices.Clone(migrations)
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out
}

// prepareLedger creates schema_migrations and returns the effective version.
// An unversioned catalog counts as version 1; when stamp is set that is
// recorded in the ledger.
func prepareLedger(db *sql.DB, stamp bool) (int, error) {
	state, err := inspectSchema(db)
	if err != nil {
		return 0, fmt.Errorf("inspect schema: %w", err)
	}
	if _, err := db.Exec(ledgerDDL); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}
	if state.unversioned() && stamp {
		if _, err := db.Exec("INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (1, datetime('now'))"); err != nil {
			return 0, fmt.Errorf("stamp unversioned catalog: %w", err)
		}
	}

	version, err := currentVersion(db)
	if err != nil {
		return 0, fmt.Errorf("get current version: %w", err)
	}
	if state.unversioned() && version == 0 {
		version = 1
	}
	return version, nil
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", m.Version); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.Version, err)
	}
	return nil
}

// runMigrations applies every migration newer than the recorded version.
func runMigrations(db *sql.DB) error {
	version, err := prepareLedger(db, true)
	if err != nil {
		return err
	}
	for _, m := range orderedMigrations() {
		if m.Version <= version {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

// MigrationPlan reports the migration status without applying anything.
func MigrationPlan(db *sql.DB) (*MigrationStatus, error) {
	version, err := prepareLedger(db, false)
	if err != nil {
		return nil, err
	}

	status := &MigrationStatus{CurrentVersion: version}
	for _, m := range orderedMigrations() {
		status.AvailableVersion = max(status.AvailableVersion, m.Version)
		if m.Version > version {
			status.Pending = append(status.Pending, MigrationInfo{Version: m.Version, Description: m.Description})
		}
	}
	return status, nil
}
