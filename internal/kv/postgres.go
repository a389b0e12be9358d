package kv

import (
	"context"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const defaultPostgresDSN = "postgres://localhost/lendsqr?sslmode=disable"

var postgresDialect = sqlDialect{
	driver: DriverPostgres,
	createTable: `CREATE TABLE IF NOT EXISTS kv_entries (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL
	)`,
	get:    `SELECT value FROM kv_entries WHERE key = $1`,
	upsert: `INSERT INTO kv_entries (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
	delete: `DELETE FROM kv_entries WHERE key = $1`,
}

// NewPostgres connects to Postgres through the pgx database/sql driver.
func NewPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	return openSQL(ctx, "pgx", dsn, postgresDialect)
}
