// File: internal/transport/transport.go
package transport

import "context"

// Message describes one key change broadcast to subscribers.
// NewValue is nil when the key was deleted.
type Message struct {
	Key      string
	NewValue *string
}

// Handler receives key-change messages. Handlers must not block.
type Handler func(msg Message)

// Transport is a durable, namespaced key/value store with broadcast-on-write.
//
// The loopback contract: by the time Write returns, every subscriber
// registered in the writing process has already been invoked with the
// change. Subscribers cannot distinguish local from remote origin.
type Transport interface {
	// Write durably persists value under key and broadcasts the change.
	Write(ctx context.Context, key, value string) error
	// Read returns the last written value. The second return is false when
	// the key has never been written or was deleted.
	Read(ctx context.Context, key string) (string, bool, error)
	// Delete removes the key and broadcasts a nil-valued change.
	Delete(ctx context.Context, key string) error
	// Subscribe registers a handler for all key changes. The returned
	// function cancels the subscription and must be called when the
	// owning scope ends.
	Subscribe(handler Handler) (unsubscribe func())
}
