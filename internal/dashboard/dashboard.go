// Package dashboard assembles the users page: the combined load of records and
// stats, and the filter and paging state each dashboard session keeps.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/listing"
)

// LoadFailureMessage is shown to the user when the combined load fails.
const LoadFailureMessage = "Failed to load users. Please try again."

// LoadError reports a failed combined load. It is always retryable.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "load users: " + e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }

// Retryable reports whether re-issuing the request may succeed.
func (e *LoadError) Retryable() bool { return true }

// IsLoadError reports whether err is, or wraps, a *LoadError.
func IsLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

// Source provides the two halves of the combined load.
type Source interface {
	ListAll(ctx context.Context) ([]domain.User, error)
	ComputeStats(ctx context.Context) (domain.UsersStats, error)
}

// Snapshot is the result of one combined load.
type Snapshot struct {
	Records []domain.User
	Stats   domain.UsersStats
}

// Load fetches records and stats concurrently. Either failure fails the whole load.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := src.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		snap.Records = records
		return nil
	})
	g.Go(func() error {
		stats, err := src.ComputeStats(gctx)
		if err != nil {
			return fmt.Errorf("compute stats: %w", err)
		}
		snap.Stats = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, &LoadError{Err: err}
	}
	return snap, nil
}

// Page is everything the users page renders.
type Page struct {
	Stats         domain.UsersStats `json:"stats"`
	Organizations []string          `json:"organizations"`
	State         listing.ViewState `json:"state"`
	listing.View
}

// Dashboard keeps a bounded set of per-session view states. Sessions beyond
// the bound are evicted least recently used first and start over on return.
//
// Records and stats are loaded once and held. Every view change is derived
// from the held snapshot. Invalidate or Refresh discards it.
type Dashboard struct {
	src      Source
	mu       sync.Mutex
	sessions *lru.Cache[string, listing.ViewState]
	logger   *slog.Logger

	loadMu     sync.Mutex // serialises loads
	snap       Snapshot
	loaded     bool
	generation uint64
}

// New creates a Dashboard remembering at most maxSessions sessions.
func New(src Source, maxSessions int, logger *slog.Logger) (*Dashboard, error) {
	if maxSessions <= 0 {
		maxSessions = 1024
	}
	sessions, err := lru.New[string, listing.ViewState](maxSessions)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dashboard{src: src, sessions: sessions, logger: logger.With("component", "dashboard")}, nil
}

// State returns the session's view state, or a fresh one.
func (d *Dashboard) State(session string) listing.ViewState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked(session)
}

// Update applies fn to the session's state and stores the result. When fn
// fails the stored state is left unchanged.
func (d *Dashboard) Update(session string, fn func(*listing.ViewState) error) (listing.ViewState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.stateLocked(session)
	if err := fn(&state); err != nil {
		return d.stateLocked(session), err
	}
	d.sessions.Add(session, state)
	return state, nil
}

// Next advances the session one page. The last page is computed from the
// held snapshot and the session's applied filters at the time of the move.
func (d *Dashboard) Next(ctx context.Context, session string) (listing.ViewState, error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		return listing.ViewState{}, err
	}
	return d.Update(session, func(s *listing.ViewState) error {
		visible := len(listing.ApplyFilters(snap.Records, s.Applied))
		s.Next(listing.PageCount(visible, s.PageSize))
		return nil
	})
}

// Render renders the session's current page from the held snapshot, loading
// it first when nothing is held.
func (d *Dashboard) Render(ctx context.Context, session string) (Page, error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		d.logger.Error("dashboard load failed", "session", session, "error", err)
		return Page{}, err
	}
	state := d.State(session)
	return Page{
		Stats:         snap.Stats,
		Organizations: listing.Organizations(snap.Records),
		State:         state,
		View:          listing.Render(snap.Records, state),
	}, nil
}

// Invalidate drops the held snapshot. The next render loads again.
func (d *Dashboard) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = Snapshot{}
	d.loaded = false
	d.generation++
}

// Refresh discards the held snapshot and loads a new one.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.Invalidate()
	_, err := d.snapshot(ctx)
	return err
}

// Sessions reports how many sessions are remembered.
func (d *Dashboard) Sessions() int {
	return d.sessions.Len()
}

func (d *Dashboard) snapshot(ctx context.Context) (Snapshot, error) {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	d.mu.Lock()
	snap, loaded, gen := d.snap, d.loaded, d.generation
	d.mu.Unlock()
	if loaded {
		return snap, nil
	}

	snap, err := Load(ctx, d.src)
	if err != nil {
		return Snapshot{}, err
	}

	d.mu.Lock()
	// an Invalidate during the load makes this result stale for later callers
	if d.generation == gen {
		d.snap = snap
		d.loaded = true
	}
	d.mu.Unlock()
	return snap, nil
}

func (d *Dashboard) stateLocked(session string) listing.ViewState {
	if state, ok := d.sessions.Get(session); ok {
		return state
	}
	return listing.NewViewState()
}
