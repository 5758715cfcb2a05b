// File: internal/transport/local.go
package transport

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Bus is the in-process Transport implementation: a durable Store plus a
// subscriber registry. Writes dispatch synchronously to every subscriber,
// the writer's own included.
type Bus struct {
	store  Store
	logger *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]Handler
}

// NewBus creates a Transport backed by the given store.
func NewBus(store Store, logger *zap.Logger) *Bus {
	return &Bus{
		store:  store,
		logger: logger.Named("transport"),
		subs:   make(map[int]Handler),
	}
}

func (b *Bus) Write(ctx context.Context, key, value string) error {
	if err := b.store.Put(ctx, key, value); err != nil {
		return err
	}
	b.dispatch(Message{Key: key, NewValue: &value})
	return nil
}

func (b *Bus) Read(ctx context.Context, key string) (string, bool, error) {
	return b.store.Get(ctx, key)
}

func (b *Bus) Delete(ctx context.Context, key string) error {
	if err := b.store.Remove(ctx, key); err != nil {
		return err
	}
	b.dispatch(Message{Key: key})
	return nil
}

func (b *Bus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = handler

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// dispatch invokes every registered subscriber in registration order with
// the change. Runs on the writer's goroutine so the loopback has completed
// by the time Write returns.
func (b *Bus) dispatch(msg Message) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for id := 0; id < b.nextID; id++ {
		if h, ok := b.subs[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}
