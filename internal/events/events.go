// Package events publishes user status changes to interested consumers.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

// TypeStatusChanged is the type and routing key of a status change.
const TypeStatusChanged = "user.status_changed"

// Event describes a completed mutation of a user record.
type Event struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	UserID     string        `json:"userId"`
	Status     domain.Status `json:"status"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// StatusChanged builds the event for user's new status.
func StatusChanged(user domain.User, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeStatusChanged,
		UserID:     user.ID,
		Status:     user.Status,
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Recorder keeps published events in memory, for tests and local inspection.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// FailWith makes subsequent publishes return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
