// File: internal/engine/session.go
package engine

import (
	"github.com/google/uuid"

	"roadassist_backend/internal/domain"
	"roadassist_backend/internal/location"
)

// Session is one attached execution context: an actor observing the store.
// It owns the single previous-snapshot slot used for diffing, plus the
// actor's location source and watcher. Sessions are driven by the Manager
// and hold no goroutines of their own.
type Session struct {
	ID    uuid.UUID
	Actor domain.Actor

	// prev is overwritten after every tick; prevOK is false until the
	// first observation completes.
	prev   domain.Snapshot
	prevOK bool

	source  *location.ChannelSource
	watcher *location.Watcher
}

// Source returns the session's position inbox for device-relayed reports.
func (s *Session) Source() *location.ChannelSource {
	return s.source
}

// teardown releases everything the session owns. The prev slot is left
// alone: only the tick loop writes it, and a detached session is already
// unreachable from the manager.
func (s *Session) teardown() {
	s.watcher.Stop()
}
