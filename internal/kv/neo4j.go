package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/Boluski2/lendsqr-admin/internal/graph"
)

const (
	neo4jGetCypher = `
MATCH (e:StorageEntry {key: $key})
RETURN e.value AS value`

	neo4jSetCypher = `
MERGE (e:StorageEntry {key: $key})
SET e.value = $value,
    e.updatedAt = datetime()`

	neo4jDeleteCypher = `
MATCH (e:StorageEntry {key: $key})
DETACH DELETE e`
)

// GraphStore keeps each entry as a StorageEntry node.
type GraphStore struct {
	client graph.Client
}

// NewGraph wraps an established graph client.
func NewGraph(client graph.Client) (*GraphStore, error) {
	if client == nil {
		return nil, errors.New("graph client is required")
	}
	return &GraphStore{client: client}, nil
}

func (s *GraphStore) Driver() Driver { return DriverNeo4j }

func (s *GraphStore) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := s.client.ExecuteRead(ctx, neo4jGetCypher, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("read storage entry: %w", err)
	}
	rec, ok := res.First()
	if !ok {
		return nil, ErrNotFound
	}
	value, err := rec.String("value")
	if err != nil {
		return nil, fmt.Errorf("decode storage entry: %w", err)
	}
	return []byte(value), nil
}

func (s *GraphStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.ExecuteWrite(ctx, neo4jSetCypher, map[string]any{
		"key":   key,
		"value": string(value),
	})
	if err != nil {
		return fmt.Errorf("write storage entry: %w", err)
	}
	return nil
}

func (s *GraphStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.ExecuteWrite(ctx, neo4jDeleteCypher, map[string]any{"key": key}); err != nil {
		return fmt.Errorf("delete storage entry: %w", err)
	}
	return nil
}

func (s *GraphStore) Ping(ctx context.Context) error {
	return s.client.VerifyConnectivity(ctx)
}

func (s *GraphStore) Close() error {
	return s.client.Close(context.Background())
}
