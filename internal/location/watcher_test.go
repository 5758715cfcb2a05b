package location

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"roadassist_backend/internal/domain"
)

type fakeHandle struct {
	stopped bool
}

func (h *fakeHandle) Stop() { h.stopped = true }

type fakeSource struct {
	handles  []*fakeHandle
	failNext bool
	onUpdate func(domain.Coordinates)
}

func (s *fakeSource) Watch(onUpdate func(domain.Coordinates), _ func(error)) (Handle, error) {
	if s.failNext {
		return nil, errors.New("position source unavailable")
	}
	h := &fakeHandle{}
	s.handles = append(s.handles, h)
	s.onUpdate = onUpdate
	return h, nil
}

type fakeStore struct {
	updates []domain.Coordinates
	err     error
}

func (s *fakeStore) UpdateLocation(_ context.Context, _ uuid.UUID, coords domain.Coordinates) error {
	if s.err != nil {
		return s.err
	}
	s.updates = append(s.updates, coords)
	return nil
}

var mech = domain.Actor{Role: domain.RoleMechanic, ID: "m1", Name: "Jay"}

func enRouteSnapshot(id uuid.UUID) domain.Snapshot {
	return domain.Snapshot{{
		ID:         id,
		CustomerID: "c1",
		Mechanic:   &domain.MechanicRef{ID: "m1", Name: "Jay"},
		Status:     domain.StatusEnRoute,
	}}
}

func TestWatcher_StartsWhenPredicateBecomesTrue(t *testing.T) {
	source := &fakeSource{}
	w := NewWatcher(source, &fakeStore{}, zap.NewNop())
	ctx := context.Background()

	w.Evaluate(ctx, enRouteSnapshot(uuid.New()), mech)

	assert.True(t, w.Watching())
	assert.Len(t, source.handles, 1)
}

func TestWatcher_TrueTrueDoesNotDoubleSubscribe(t *testing.T) {
	source := &fakeSource{}
	w := NewWatcher(source, &fakeStore{}, zap.NewNop())
	ctx := context.Background()
	snap := enRouteSnapshot(uuid.New())

	w.Evaluate(ctx, snap, mech)
	w.Evaluate(ctx, snap, mech)

	assert.Len(t, source.handles, 1, "a held handle must never be shadowed by a second subscription")
}

func TestWatcher_TrueFalseTrueYieldsTwoHandlesNeverConcurrent(t *testing.T) {
	source := &fakeSource{}
	w := NewWatcher(source, &fakeStore{}, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	w.Evaluate(ctx, enRouteSnapshot(id), mech)

	done := enRouteSnapshot(id)
	done[0].Status = domain.StatusCompleted
	w.Evaluate(ctx, done, mech)
	assert.True(t, source.handles[0].stopped, "handle must be released on predicate false")
	assert.False(t, w.Watching())

	w.Evaluate(ctx, enRouteSnapshot(id), mech)

	assert.Len(t, source.handles, 2)
	assert.False(t, source.handles[1].stopped)
}

func TestWatcher_PredicateRequiresExactlyOneMatch(t *testing.T) {
	source := &fakeSource{}
	w := NewWatcher(source, &fakeStore{}, zap.NewNop())
	ctx := context.Background()

	snap := append(enRouteSnapshot(uuid.New()), enRouteSnapshot(uuid.New())...)
	w.Evaluate(ctx, snap, mech)

	assert.False(t, w.Watching())
	assert.Empty(t, source.handles)
}

func TestWatcher_CustomerNeverWatches(t *testing.T) {
	source := &fakeSource{}
	w := NewWatcher(source, &fakeStore{}, zap.NewNop())

	w.Evaluate(context.Background(), enRouteSnapshot(uuid.New()), domain.Actor{Role: domain.RoleCustomer, ID: "c1"})

	assert.False(t, w.Watching())
}

func TestWatcher_StopReleasesHandle(t *testing.T) {
	source := &fakeSource{}
	w := NewWatcher(source, &fakeStore{}, zap.NewNop())

	w.Evaluate(context.Background(), enRouteSnapshot(uuid.New()), mech)
	w.Stop()

	assert.True(t, source.handles[0].stopped)
	assert.False(t, w.Watching())

	// Idempotent on an already-idle watcher.
	w.Stop()
}

func TestWatcher_SourceFailureStaysIdle(t *testing.T) {
	source := &fakeSource{failNext: true}
	w := NewWatcher(source, &fakeStore{}, zap.NewNop())

	w.Evaluate(context.Background(), enRouteSnapshot(uuid.New()), mech)

	assert.False(t, w.Watching())

	// Source recovers on the next evaluation.
	source.failNext = false
	w.Evaluate(context.Background(), enRouteSnapshot(uuid.New()), mech)
	assert.True(t, w.Watching())
}

func TestWatcher_PositionUpdatesReachStore(t *testing.T) {
	source := &fakeSource{}
	store := &fakeStore{}
	w := NewWatcher(source, store, zap.NewNop())

	w.Evaluate(context.Background(), enRouteSnapshot(uuid.New()), mech)
	source.onUpdate(domain.Coordinates{Latitude: 47.6, Longitude: -122.3})

	assert.Len(t, store.updates, 1)
	assert.InDelta(t, 47.6, store.updates[0].Latitude, 0.001)
}

func TestWatcher_StoreErrorDoesNotStopWatch(t *testing.T) {
	source := &fakeSource{}
	store := &fakeStore{err: errors.New("db down")}
	w := NewWatcher(source, store, zap.NewNop())

	w.Evaluate(context.Background(), enRouteSnapshot(uuid.New()), mech)
	source.onUpdate(domain.Coordinates{Latitude: 1, Longitude: 2})

	assert.True(t, w.Watching())
}
