package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/events"
	"github.com/Boluski2/lendsqr-admin/internal/metrics"
)

// StatusSetter applies a status change to the backing collection.
type StatusSetter interface {
	SetStatus(ctx context.Context, id string, status domain.Status) (domain.User, bool, error)
}

// RecordCache is the local record cache as seen by the services.
type RecordCache interface {
	Get(ctx context.Context, id string) (domain.User, bool)
	Put(ctx context.Context, user domain.User) error
}

// MutationService changes a user's status and mirrors the result into the cache.
type MutationService struct {
	query     StatusSetter
	cache     RecordCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	nowFn     func() time.Time
}

// NewMutationService wires a MutationService. publisher and m may be nil.
func NewMutationService(query StatusSetter, cache RecordCache, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *MutationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MutationService{
		query:     query,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With("component", "mutation"),
		nowFn:     time.Now,
	}
}

// SetUserStatus applies status to id. The in-memory record and the cache entry
// are both updated before it returns; an unknown id leaves the cache untouched
// and yields domain.ErrUserNotFound.
func (s *MutationService) SetUserStatus(ctx context.Context, id string, status domain.Status) (domain.User, error) {
	if id == "" {
		return domain.User{}, domain.ErrMissingUserID
	}
	if !status.Valid() {
		return domain.User{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	user, ok, err := s.query.SetStatus(ctx, id, status)
	if err != nil {
		return domain.User{}, fmt.Errorf("set status: %w", err)
	}
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	if err := s.cache.Put(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("mirror status to cache: %w", err)
	}
	s.metrics.StatusChanged(user.Status)

	if err := s.publisher.Publish(ctx, events.StatusChanged(user, s.nowFn())); err != nil {
		s.logger.Warn("failed to publish status change", "user_id", id, "status", status, "error", err)
	}
	s.logger.Info("user status changed", "user_id", id, "status", status)
	return user, nil
}

// Blacklist marks id as Blacklisted.
func (s *MutationService) Blacklist(ctx context.Context, id string) (domain.User, error) {
	return s.SetUserStatus(ctx, id, domain.StatusBlacklisted)
}

// Activate marks id as Active.
func (s *MutationService) Activate(ctx context.Context, id string) (domain.User, error) {
	return s.SetUserStatus(ctx, id, domain.StatusActive)
}
