// Package db persists prediction runs to a local SQLite database so a
// caller can review past weeks' predictions. It is a thin, optional layer
// on top of internal/engine — the engine itself is pure and stateless.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"turnipmarket/internal/logger"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func dbPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "turnipmarket.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "turnipmarket.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	path := dbPath()
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
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
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS prediction_history (
				id                       TEXT PRIMARY KEY,
				created_at               TEXT NOT NULL,
				observations_json        TEXT NOT NULL,
				first_buy                INTEGER NOT NULL,
				previous_pattern         INTEGER NOT NULL,
				top_pattern_name         TEXT NOT NULL,
				top_pattern_probability  REAL NOT NULL,
				week_guaranteed_minimum  INTEGER NOT NULL,
				week_max                 INTEGER NOT NULL
			);

			INSERT INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migrate v1: %w", err)
		}
	}

	return nil
}
