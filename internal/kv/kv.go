// Package kv provides the browser-profile style key/value storage the local
// cache and the login flag are persisted in. Each backend stores opaque byte
// values under string keys.
package kv

import (
	"context"
	"errors"
)

// Driver identifies a concrete storage backend.
type Driver string

const (
	DriverMemory     Driver = "memory"
	DriverFilesystem Driver = "fs"
	DriverSQLite     Driver = "sqlite"
	DriverPostgres   Driver = "postgres"
	DriverS3         Driver = "s3"
	DriverNeo4j      Driver = "neo4j"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Store is the minimal contract shared by every backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
	Driver() Driver
}

// IsNotFound reports whether err signals a missing key.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
