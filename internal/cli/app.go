package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Boluski2/lendsqr-admin/internal/auth"
	"github.com/Boluski2/lendsqr-admin/internal/cache"
	"github.com/Boluski2/lendsqr-admin/internal/config"
	"github.com/Boluski2/lendsqr-admin/internal/events"
	"github.com/Boluski2/lendsqr-admin/internal/generator"
	"github.com/Boluski2/lendsqr-admin/internal/kv"
	"github.com/Boluski2/lendsqr-admin/internal/metrics"
	"github.com/Boluski2/lendsqr-admin/internal/repository"
	"github.com/Boluski2/lendsqr-admin/internal/service"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	store     kv.Store
	repo      *repository.Repository
	query     *service.QueryService
	cache     *cache.LocalCache
	resolver  *service.Resolver
	mutation  *service.MutationService
	publisher events.Publisher
	metrics   *metrics.Metrics
	auth      *auth.Service
}

// newApp opens storage and the event publisher and wires the services.
// Commands other than serve pass simulateLatency=false.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, simulateLatency bool) (*app, error) {
	store, err := kv.Open(ctx, cfg.Storage, cfg.Graph)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	logger.Info("storage ready", "driver", store.Driver())

	publisher, err := events.New(ctx, cfg.Events, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var latency service.Latency
	if simulateLatency {
		latency = service.LatencyFromConfig(cfg.Latency)
	}

	m := metrics.New()
	repo := newRepository(cfg.Generator)
	query := service.NewQueryService(repo, latency)
	localCache := cache.New(store, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		repo:      repo,
		query:     query,
		cache:     localCache,
		resolver:  service.NewResolver(localCache, query, m, logger),
		mutation:  service.NewMutationService(query, localCache, publisher, m, logger),
		publisher: publisher,
		metrics:   m,
		auth:      auth.New(store, cfg.Auth, logger),
	}, nil
}

func newRepository(cfg config.GeneratorConfig) *repository.Repository {
	if cfg.DatasetPath != "" {
		return repository.FromDataset(cfg.DatasetPath)
	}
	return repository.FromGenerator(generator.New(generator.Config{
		Count: cfg.Count,
		Seed:  cfg.Seed,
	}))
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("closing event publisher failed", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing storage failed", "error", err)
	}
}
