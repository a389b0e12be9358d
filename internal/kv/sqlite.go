package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var sqliteDialect = sqlDialect{
	driver: DriverSQLite,
	createTable: `CREATE TABLE IF NOT EXISTS kv_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`,
	get:    `SELECT value FROM kv_entries WHERE key = ?`,
	upsert: `INSERT INTO kv_entries (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	delete: `DELETE FROM kv_entries WHERE key = ?`,
}

// NewSQLite opens (or creates) a SQLite database file at path.
func NewSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = "lendsqr.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	store, err := openSQL(ctx, "sqlite", path, sqliteDialect)
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	store.db.SetMaxOpenConns(1)
	return store, nil
}
