// Package db persists the artifacts worth keeping across runs: the all-pairs
// distance table (expensive to recompute) and a history of computed routes.
package db

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"eve-courier/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database under dataDir and runs migrations.
func Open(dataDir string) (*DB, error) {
	path := filepath.Join(dataDir, "courier.db")
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS distance_cache (
				profile_hash TEXT PRIMARY KEY,
				distances    BLOB NOT NULL,
				created_at   TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS route_history (
				id             TEXT PRIMARY KEY,
				created_at     TEXT NOT NULL,
				profit_rate    REAL NOT NULL,
				risk           REAL NOT NULL,
				capital        REAL NOT NULL,
				transport_time REAL NOT NULL,
				gross_profit   REAL NOT NULL,
				net_profit     REAL NOT NULL,
				steps_json     TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_route_history_ts ON route_history(created_at);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}
