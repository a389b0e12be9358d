package service

import (
	"context"
	"log/slog"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/metrics"
)

// UserLookup fetches a single record from the query service.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (domain.User, bool, error)
}

// Resolver serves the detail view: the cached record when there is one,
// otherwise the query service's record, which is then cached.
type Resolver struct {
	cache   RecordCache
	lookup  UserLookup
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewResolver wires a Resolver. m may be nil.
func NewResolver(cache RecordCache, lookup UserLookup, m *metrics.Metrics, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{cache: cache, lookup: lookup, metrics: m, logger: logger.With("component", "resolver")}
}

// Resolve returns the record for id and whether it exists.
func (r *Resolver) Resolve(ctx context.Context, id string) (domain.User, bool, error) {
	if id == "" {
		return domain.User{}, false, domain.ErrMissingUserID
	}

	if user, ok := r.cache.Get(ctx, id); ok {
		r.metrics.CacheLookup(true)
		return user, true, nil
	}
	r.metrics.CacheLookup(false)

	user, ok, err := r.lookup.GetByID(ctx, id)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	if err := r.cache.Put(ctx, user); err != nil {
		r.logger.Warn("failed to cache user", "user_id", id, "error", err)
	}
	return user, true, nil
}
