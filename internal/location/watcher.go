// File: internal/location/watcher.go
package location

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roadassist_backend/internal/domain"
)

// Handle is one live subscription to a position source.
type Handle interface {
	Stop()
}

// Source produces position updates. Watch runs until the returned handle
// is stopped; transient errors go to onErr and do not end the watch.
type Source interface {
	Watch(onUpdate func(domain.Coordinates), onErr func(error)) (Handle, error)
}

// Store receives the position updates this watcher reports.
type Store interface {
	UpdateLocation(ctx context.Context, bookingID uuid.UUID, coords domain.Coordinates) error
}

// Watcher holds at most one active position subscription, gated by a
// predicate over the booking snapshot. Idle and Watching are the only two
// states; the handle field is owned here and nowhere else.
type Watcher struct {
	source Source
	store  Store
	logger *zap.Logger

	mu        sync.Mutex
	handle    Handle
	bookingID uuid.UUID
}

// NewWatcher creates an idle watcher.
func NewWatcher(source Source, store Store, logger *zap.Logger) *Watcher {
	return &Watcher{
		source: source,
		store:  store,
		logger: logger.Named("LocationWatcher"),
	}
}

// shouldWatch is the gating predicate: the actor is a mechanic with exactly
// one booking assigned to them that is currently En Route.
func shouldWatch(snap domain.Snapshot, actor domain.Actor) (uuid.UUID, bool) {
	if actor.Role != domain.RoleMechanic || actor.ID == "" {
		return uuid.Nil, false
	}
	var matched []domain.Booking
	for _, b := range snap {
		if b.Mechanic != nil && b.Mechanic.ID == actor.ID {
			matched = append(matched, b)
		}
	}
	if len(matched) != 1 {
		return uuid.Nil, false
	}
	if matched[0].Status != domain.StatusEnRoute {
		return uuid.Nil, false
	}
	return matched[0].ID, true
}

// Evaluate applies the predicate to the latest snapshot and transitions
// the state machine. Starting is check-before-start: a held handle is
// never shadowed by a second subscription.
func (w *Watcher) Evaluate(ctx context.Context, snap domain.Snapshot, actor domain.Actor) {
	bookingID, want := shouldWatch(snap, actor)

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case want && w.handle == nil:
		w.start(ctx, bookingID)
	case !want && w.handle != nil:
		w.release()
	}
}

// Stop releases the held handle on owner teardown. Safe to call when idle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.handle != nil {
		w.release()
	}
}

// Watching reports whether a subscription is currently held.
func (w *Watcher) Watching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handle != nil
}

// start must be called with w.mu held and w.handle nil.
func (w *Watcher) start(ctx context.Context, bookingID uuid.UUID) {
	handle, err := w.source.Watch(
		func(coords domain.Coordinates) {
			if err := w.store.UpdateLocation(ctx, bookingID, coords); err != nil {
				w.logger.Warn("Failed to record live location",
					zap.String("bookingID", bookingID.String()), zap.Error(err))
			}
		},
		func(err error) {
			// Transient source errors are expected; the subscription stays up.
			w.logger.Warn("Location source error", zap.Error(err))
		},
	)
	if err != nil {
		w.logger.Warn("Failed to start location watch, staying idle", zap.Error(err))
		return
	}
	w.handle = handle
	w.bookingID = bookingID
	w.logger.Info("Live location tracking started", zap.String("bookingID", bookingID.String()))
}

// release must be called with w.mu held and w.handle non-nil.
func (w *Watcher) release() {
	w.handle.Stop()
	w.handle = nil
	w.logger.Info("Live location tracking stopped", zap.String("bookingID", w.bookingID.String()))
	w.bookingID = uuid.Nil
}
