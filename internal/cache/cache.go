// Package cache keeps the last known state of viewed and edited user records
// in the key/value store, so a detail view survives restarts without another
// round trip to the query service.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/kv"
)

// StorageKey is the single key holding the serialized id -> record mapping.
const StorageKey = "lendsqr_users"

// LocalCache is an id-keyed record cache persisted as one JSON object.
type LocalCache struct {
	store  kv.Store
	logger *slog.Logger
	mu     sync.Mutex
}

// New wraps store. A nil logger discards warnings.
func New(store kv.Store, logger *slog.Logger) *LocalCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LocalCache{store: store, logger: logger.With("component", "cache")}
}

// Get returns the cached record for id. Unreadable storage reads as a miss.
func (c *LocalCache) Get(ctx context.Context, id string) (domain.User, bool) {
	c.mu.Lock()
	entries := c.load(ctx)
	c.mu.Unlock()

	user, ok := entries[id]
	return user, ok
}

// Put upserts user under its id, leaving every other entry untouched.
func (c *LocalCache) Put(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		return domain.ErrMissingUserID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load(ctx)
	entries[user.ID] = user.Clone()

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := c.store.Set(ctx, StorageKey, payload); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Len reports how many records are cached.
func (c *LocalCache) Len(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.load(ctx))
}

// load must be called with c.mu held.
func (c *LocalCache) load(ctx context.Context) map[string]domain.User {
	entries := make(map[string]domain.User)

	raw, err := c.store.Get(ctx, StorageKey)
	switch {
	case kv.IsNotFound(err):
		return entries
	case err != nil:
		c.logger.Warn("cache storage unavailable, treating as empty", "driver", c.store.Driver(), "error", err)
		return entries
	case len(raw) == 0:
		return entries
	}

	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn("cache payload corrupt, treating as empty", "error", err)
		return make(map[string]domain.User)
	}
	if entries == nil {
		// a stored JSON null decodes to a nil map
		entries = make(map[string]domain.User)
	}
	return entries
}
