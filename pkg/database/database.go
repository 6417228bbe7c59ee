// Package database opens the SQLite database shared by the sql address books and the
// preferences store.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var (
	openMu sync.Mutex
	opened = make(map[string]*sqlx.DB)
)

// Open opens (or creates) a SQLite database at path, enables WAL mode, and runs any pending
// schema migrations.
func Open(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Shared returns the process wide handle for path, opening it on first use.
func Shared(path string) (*sqlx.DB, error) {
	openMu.Lock()
	defer openMu.Unlock()

	if db, ok := opened[path]; ok {
		return db, nil
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "database").Str("path", path).Msg("Opened SQLite database")
	opened[path] = db

	return db, nil
}

// CloseAll closes every handle returned by Shared.
func CloseAll() {
	openMu.Lock()
	defer openMu.Unlock()

	for path, db := range opened {
		if err := db.Close(); err != nil {
			log.Warn().Str("module", "database").Str("path", path).Err(err).
				Msg("Failed to close database")
		}
		delete(opened, path)
	}
}

// runMigrations checks the current schema version and applies any outstanding migrations in
// order.
func runMigrations(db *sqlx.DB) error {
	currentVersion := 0

	var tableCount int
	err := db.Get(&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		err = db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}
