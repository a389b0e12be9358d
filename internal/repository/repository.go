package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/generator"
)

// LoadFunc builds the record collection. It is invoked at most once successfully.
type LoadFunc func(ctx context.Context) ([]domain.User, error)

// Repository owns the process-wide user collection. The collection is built
// lazily on first use and keeps its identity for the lifetime of the value;
// SetStatus is the only path that writes to it.
type Repository struct {
	load LoadFunc

	mu     sync.RWMutex
	users  []domain.User
	loaded bool
}

// New instantiates a Repository backed by the supplied loader.
func New(load LoadFunc) *Repository {
	return &Repository{load: load}
}

// FromGenerator returns a Repository whose collection comes from gen.
func FromGenerator(gen *generator.Generator) *Repository {
	return New(gen.Generate)
}

// FromDataset returns a Repository whose collection is read from a users.json file.
func FromDataset(path string) *Repository {
	return New(func(context.Context) ([]domain.User, error) {
		return generator.ReadDataset(path)
	})
}

// Records returns the memoized collection, building it on the first call.
// The returned slice is shared; callers must treat it as read-only.
func (r *Repository) Records(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	if r.loaded {
		users := r.users
		r.mu.RUnlock()
		return users, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return r.users, nil
}

// Snapshot returns a deep copy of the collection safe to hand to other goroutines.
func (r *Repository) Snapshot(ctx context.Context) ([]domain.User, error) {
	if _, err := r.Records(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, len(r.users))
	for i, u := range r.users {
		out[i] = u.Clone()
	}
	return out, nil
}

// FindByID scans the collection for id.
func (r *Repository) FindByID(ctx context.Context, id string) (domain.User, bool, error) {
	if _, err := r.Records(ctx); err != nil {
		return domain.User{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.indexOfLocked(id); idx >= 0 {
		return r.users[idx].Clone(), true, nil
	}
	return domain.User{}, false, nil
}

// CountByStatus returns the collection size and per-status counts.
func (r *Repository) CountByStatus(ctx context.Context) (int, map[domain.Status]int, error) {
	if _, err := r.Records(ctx); err != nil {
		return 0, nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, u := range r.users {
		counts[u.Status]++
	}
	return len(r.users), counts, nil
}

// SetStatus mutates the status of the record with id in place and returns the updated record.
func (r *Repository) SetStatus(ctx context.Context, id string, status domain.Status) (domain.User, bool, error) {
	if !status.Valid() {
		return domain.User{}, false, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(ctx); err != nil {
		return domain.User{}, false, err
	}
	idx := r.indexOfLocked(id)
	if idx < 0 {
		return domain.User{}, false, nil
	}
	r.users[idx].Status = status
	return r.users[idx].Clone(), true, nil
}

func (r *Repository) ensureLoadedLocked(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	if r.load == nil {
		return errors.New("repository has no loader")
	}
	users, err := r.load(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	r.users = users
	r.loaded = true
	return nil
}

func (r *Repository) indexOfLocked(id string) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}
