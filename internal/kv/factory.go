package kv

import (
	"context"
	"fmt"

	"github.com/Boluski2/lendsqr-admin/internal/config"
	"github.com/Boluski2/lendsqr-admin/internal/graph"
)

// Open constructs the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, graphCfg config.GraphConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverSQLite:
		return NewSQLite(ctx, cfg.SQLitePath)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.PostgresDSN)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
	case DriverNeo4j:
		client, err := graph.NewNeo4jClient(ctx, graph.Options{
			URI:            graphCfg.URI,
			Database:       graphCfg.Database,
			Username:       graphCfg.Username,
			Password:       graphCfg.Password,
			MaxConnections: graphCfg.MaxConnections,
		})
		if err != nil {
			return nil, err
		}
		return NewGraph(client)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
