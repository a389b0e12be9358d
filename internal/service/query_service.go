package service

import (
	"context"
	"math"
	"time"

	"github.com/Boluski2/lendsqr-admin/internal/config"
	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

// Fixed demo ratios behind the loans and savings stat cards.
const (
	LoansRatio   = 0.25
	SavingsRatio = 0.40
)

// UserStore is the data-store contract required by the query service.
type UserStore interface {
	Snapshot(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, bool, error)
	CountByStatus(ctx context.Context) (int, map[domain.Status]int, error)
	SetStatus(ctx context.Context, id string, status domain.Status) (domain.User, bool, error)
}

// Latency is the artificial delay applied before each query service operation.
type Latency struct {
	List   time.Duration
	Get    time.Duration
	Stats  time.Duration
	Mutate time.Duration
}

// LatencyFromConfig copies the configured delays.
func LatencyFromConfig(cfg config.LatencyConfig) Latency {
	return Latency{List: cfg.List, Get: cfg.Get, Stats: cfg.Stats, Mutate: cfg.Mutate}
}

// QueryService stands in for the remote users API. Every call waits its
// configured latency first and gives up early if ctx is cancelled.
type QueryService struct {
	store   UserStore
	latency Latency
}

// NewQueryService constructs a QueryService over store.
func NewQueryService(store UserStore, latency Latency) *QueryService {
	return &QueryService{store: store, latency: latency}
}

// ListAll returns every user record.
func (s *QueryService) ListAll(ctx context.Context) ([]domain.User, error) {
	if err := sleep(ctx, s.latency.List); err != nil {
		return nil, err
	}
	return s.store.Snapshot(ctx)
}

// GetByID looks up a single record. A missing id is reported by the bool, not an error.
func (s *QueryService) GetByID(ctx context.Context, id string) (domain.User, bool, error) {
	if err := sleep(ctx, s.latency.Get); err != nil {
		return domain.User{}, false, err
	}
	return s.store.FindByID(ctx, id)
}

// ComputeStats aggregates the summary cards.
func (s *QueryService) ComputeStats(ctx context.Context) (domain.UsersStats, error) {
	if err := sleep(ctx, s.latency.Stats); err != nil {
		return domain.UsersStats{}, err
	}
	total, byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return domain.UsersStats{}, err
	}
	return domain.UsersStats{
		TotalUsers:       total,
		ActiveUsers:      byStatus[domain.StatusActive],
		UsersWithLoans:   ratioOf(total, LoansRatio),
		UsersWithSavings: ratioOf(total, SavingsRatio),
	}, nil
}

// SetStatus changes the status of id in the backing collection.
func (s *QueryService) SetStatus(ctx context.Context, id string, status domain.Status) (domain.User, bool, error) {
	if err := sleep(ctx, s.latency.Mutate); err != nil {
		return domain.User{}, false, err
	}
	return s.store.SetStatus(ctx, id, status)
}

func ratioOf(total int, ratio float64) int {
	return int(math.Floor(float64(total) * ratio))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
