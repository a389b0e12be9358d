// Package graph wraps the Bolt driver used when the local cache is kept in
// Neo4j (or a Bolt-compatible store such as Neptune).
package graph

import (
	"context"
	"errors"
	"fmt"
)

// Client is the slice of graph functionality the storage layer depends on.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds the records a query produced.
type Result struct {
	Records []Record
}

// Record maps returned column names to values.
type Record map[string]any

// First returns the first record, if any.
func (r Result) First() (Record, bool) {
	if len(r.Records) == 0 {
		return nil, false
	}
	return r.Records[0], true
}

// String reads a string column, accepting byte arrays as well.
func (r Record) String(key string) (string, error) {
	switch v := r[key].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("column %q is null", key)
	default:
		return "", fmt.Errorf("column %q has unexpected type %T", key, v)
	}
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
