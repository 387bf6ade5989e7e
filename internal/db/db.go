// Package db manages the database connection
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
	// sqlite driver
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	lock *os.File
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	lock, err := acquireLock(path)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		_ = releaseLock(lock)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		_ = releaseLock(lock)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection serializes writers; state saves come from one
	// goroutine anyway and this avoids SQLITE_BUSY on the flip log.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{
		DB:   sqlDB,
		lock: lock,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createStateTable(); err != nil {
		return err
	}
	return db.createFlipEventsTable()
}

// createStateTable holds the key-value records (entitlement, quota, purchases).
func (db *DB) createStateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// createFlipEventsTable holds every accepted flip, uncapped, for charts.
func (db *DB) createFlipEventsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS flip_events (
		id TEXT PRIMARY KEY,
		result TEXT NOT NULL CHECK (result IN ('heads', 'tails')),
		question TEXT,
		local_date TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_flip_events_date ON flip_events(local_date);
	CREATE INDEX IF NOT EXISTS idx_flip_events_timestamp ON flip_events(timestamp);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully and releases the
// process lock.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	err := db.DB.Close()

	lock := db.lock
	db.lock = nil
	return errors.Join(err, releaseLock(lock))
}

// Vacuum rebuilds the database file to reclaim space freed by deletes.
func (db *DB) Vacuum(ctx context.Context) error {
	_, err := db.ExecContext(ctx, "VACUUM")
	return err
}
