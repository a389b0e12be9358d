package server

import (
	"context"

	"github.com/Boluski2/lendsqr-admin/internal/kv"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// StorageHealthService reports whether the cache backend is reachable.
type StorageHealthService struct {
	Store kv.Store
}

// Probe implements the HealthService interface.
func (s StorageHealthService) Probe(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Ping(ctx)
}
