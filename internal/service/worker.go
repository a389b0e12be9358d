package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

// WarmError collects the per-id failures of a cache warm-up.
type WarmError struct {
	Errors []error
}

func (e *WarmError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *WarmError) Unwrap() []error { return e.Errors }

// Warmer preloads detail records into the local cache with a pool of workers,
// so the first visit to each detail view skips the query latency.
type Warmer struct {
	resolver *Resolver
	workers  int
}

// NewWarmer creates a Warmer with the provided concurrency.
func NewWarmer(resolver *Resolver, workers int) *Warmer {
	if workers <= 0 {
		workers = 4
	}
	return &Warmer{resolver: resolver, workers: workers}
}

// Warm resolves every id. Ids that do not exist are reported as
// domain.ErrUserNotFound inside a *WarmError; the rest are still cached.
func (w *Warmer) Warm(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, len(ids))
	var wg sync.WaitGroup

	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				if err := w.warmOne(ctx, ids[idx]); err != nil {
					errCh <- err
				}
			}
		}()
	}

Loop:
	for i := range ids {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}
	var warmErr WarmError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		warmErr.Errors = append(warmErr.Errors, err)
	}
	if len(warmErr.Errors) == 0 {
		return nil
	}
	return &warmErr
}

func (w *Warmer) warmOne(ctx context.Context, id string) error {
	_, ok, err := w.resolver.Resolve(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return nil
}
