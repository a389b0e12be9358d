package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type sqlDialect struct {
	driver      Driver
	createTable string
	get         string
	upsert      string
	delete      string
}

// SQLStore persists entries in a single kv_entries table.
type SQLStore struct {
	db      *sql.DB
	dialect sqlDialect
}

func openSQL(ctx context.Context, driverName, dsn string, dialect sqlDialect) (*SQLStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.driver, err)
	}
	if _, err := db.ExecContext(ctx, dialect.createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Driver() Driver { return s.dialect.driver }

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select kv entry: %w", err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value); err != nil {
		return fmt.Errorf("upsert kv entry: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.delete, key); err != nil {
		return fmt.Errorf("delete kv entry: %w", err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }
