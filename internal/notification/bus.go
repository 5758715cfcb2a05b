package notification

import (
	"sync"

	"github.com/google/uuid"
)

// Listener receives events as they are published. Listeners run
// synchronously on the publisher's goroutine and must not block.
type Listener func(event Event)

// Bus is the in-process notification fan-out: it retains published events,
// tracks read state, and notifies UI-facing listeners in publish order.
type Bus struct {
	mu        sync.Mutex
	retainMax int
	events    []Event
	nextID    int
	listeners map[int]Listener
}

// NewBus creates a bus retaining at most retainMax events; zero or negative
// disables the cap.
func NewBus(retainMax int) *Bus {
	return &Bus{
		retainMax: retainMax,
		listeners: make(map[int]Listener),
	}
}

// Publish appends the event to the retained list and notifies all
// listeners. The oldest events are dropped once the cap is exceeded.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	b.events = append(b.events, event)
	if b.retainMax > 0 && len(b.events) > b.retainMax {
		b.events = b.events[len(b.events)-b.retainMax:]
	}
	listeners := b.snapshotListeners()
	b.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// Subscribe registers a listener. The returned function cancels the
// registration and must be called when the owning scope ends, or the
// listener keeps receiving events after its owner is gone.
func (b *Bus) Subscribe(listener Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = listener

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// MarkRead flips the read flag of exactly one event. No-op if absent.
func (b *Bus) MarkRead(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.events {
		if b.events[i].ID == id {
			b.events[i].Read = true
			return
		}
	}
}

// ClearFor removes the retained events addressed to the recipient key,
// broadcast events included, and notifies listeners with a zero event so
// badge counts refresh. Other recipients' direct events are untouched.
func (b *Bus) ClearFor(recipientKey string) {
	b.mu.Lock()
	kept := b.events[:0]
	for _, e := range b.events {
		if !e.MatchesRecipient(recipientKey) {
			kept = append(kept, e)
		}
	}
	b.events = kept
	listeners := b.snapshotListeners()
	b.mu.Unlock()

	for _, l := range listeners {
		l(Event{})
	}
}

// ClearAll empties the retained list and notifies listeners with a zero
// event. Reserved for context teardown; per-actor clearing goes through
// ClearFor.
func (b *Bus) ClearAll() {
	b.mu.Lock()
	b.events = nil
	listeners := b.snapshotListeners()
	b.mu.Unlock()

	for _, l := range listeners {
		l(Event{})
	}
}

// EventsFor returns the retained events addressed to the recipient key, in
// publish order.
func (b *Bus) EventsFor(recipientKey string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []Event
	for _, e := range b.events {
		if e.MatchesRecipient(recipientKey) {
			matched = append(matched, e)
		}
	}
	return matched
}

// UnreadCount returns how many retained events addressed to the recipient
// key are unread.
func (b *Bus) UnreadCount(recipientKey string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, e := range b.events {
		if !e.Read && e.MatchesRecipient(recipientKey) {
			count++
		}
	}
	return count
}

// snapshotListeners must be called with b.mu held.
func (b *Bus) snapshotListeners() []Listener {
	listeners := make([]Listener, 0, len(b.listeners))
	for id := 0; id < b.nextID; id++ {
		if l, ok := b.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	return listeners
}
