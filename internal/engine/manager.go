// File: internal/engine/manager.go
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roadassist_backend/internal/booking"
	"roadassist_backend/internal/chat"
	"roadassist_backend/internal/diff"
	"roadassist_backend/internal/domain"
	"roadassist_backend/internal/location"
	"roadassist_backend/internal/notification"
	"roadassist_backend/internal/transport"
)

// Manager owns the attached sessions and drives the diff tick: on every
// poll it materializes one snapshot and runs each session's comparison
// against its own baseline. It also bridges chat writes on the transport
// into chat notifications for the other conversation participant.
type Manager struct {
	bookings booking.Repository
	notifier notification.Service
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	latest   domain.Snapshot

	unsubscribe func()
	stop        chan struct{}
	closeOnce   sync.Once
}

// NewManager creates a manager with no attached sessions.
func NewManager(
	bookings booking.Repository,
	notifier notification.Service,
	t transport.Transport,
	logger *zap.Logger,
) *Manager {
	m := &Manager{
		bookings: bookings,
		notifier: notifier,
		logger:   logger.Named("Engine"),
		sessions: make(map[uuid.UUID]*Session),
		stop:     make(chan struct{}),
	}
	m.unsubscribe = t.Subscribe(m.onTransportChange)
	return m
}

// Register attaches a new session for the actor. The returned release
// function detaches it and frees everything the session holds; callers
// must invoke it when the context ends.
func (m *Manager) Register(actor domain.Actor) (*Session, func()) {
	source := location.NewChannelSource()
	session := &Session{
		ID:      uuid.New(),
		Actor:   actor,
		source:  source,
		watcher: location.NewWatcher(source, m.bookings, m.logger),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("Session attached",
		zap.String("sessionID", session.ID.String()),
		zap.String("recipient", actor.RecipientKey()),
	)

	return session, func() { m.release(session.ID) }
}

// Get returns a session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Unregister detaches the session with the given id. No-op if absent.
func (m *Manager) Unregister(id uuid.UUID) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		m.release(id)
	}
	return ok
}

func (m *Manager) release(id uuid.UUID) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		session.teardown()
		m.logger.Info("Session detached", zap.String("sessionID", id.String()))
	}
}

// Run polls the store until ctx is cancelled or Close is called.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Close stops the poll loop, cancels the transport subscription, and
// detaches every session. Safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stop)
		m.unsubscribe()

		m.mu.Lock()
		ids := make([]uuid.UUID, 0, len(m.sessions))
		for id := range m.sessions {
			ids = append(ids, id)
		}
		m.mu.Unlock()
		for _, id := range ids {
			m.release(id)
		}
	})
}

// Tick materializes one snapshot and runs every session's diff against its
// baseline. A store failure skips the tick; baselines are left untouched
// so no transition is lost.
func (m *Manager) Tick(ctx context.Context) {
	snapshot, err := m.bookings.Snapshot(ctx)
	if err != nil {
		m.logger.Error("Failed to materialize snapshot, skipping tick", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.latest = snapshot
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()
	// Stable session order keeps cross-session publish order deterministic.
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID.String() < sessions[j].ID.String()
	})

	for _, s := range sessions {
		events := diff.ComputeEvents(s.prev, s.prevOK, snapshot, s.Actor)
		for _, event := range events {
			if err := m.notifier.Publish(ctx, event); err != nil {
				m.logger.Error("Failed to publish notification", zap.Error(err))
			}
		}
		s.prev = snapshot
		s.prevOK = true

		s.watcher.Evaluate(ctx, snapshot, s.Actor)
	}
}

// onTransportChange turns a conversation write into a chat notification
// for the participant on the other side of the newest message.
func (m *Manager) onTransportChange(msg transport.Message) {
	bookingID, ok := chat.BookingIDFromKey(msg.Key)
	if !ok || msg.NewValue == nil {
		return
	}

	var history []chat.Message
	if err := json.Unmarshal([]byte(*msg.NewValue), &history); err != nil {
		m.logger.Warn("Corrupt conversation payload on transport, ignoring",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}
	if len(history) == 0 {
		return
	}
	last := history[len(history)-1]

	recipient, senderName, ok := m.chatRecipient(bookingID, last.Sender)
	if !ok {
		return
	}

	event := notification.NewEvent(
		notification.TypeChat,
		"New Message",
		fmt.Sprintf("%s: %s", senderName, last.Text),
		"/bookings/"+bookingID+"/chat",
		recipient,
	)
	if err := m.notifier.Publish(context.Background(), event); err != nil {
		m.logger.Error("Failed to publish chat notification", zap.Error(err))
	}
}

// chatRecipient resolves who should be notified about a message in the
// booking's conversation, using the latest snapshot.
func (m *Manager) chatRecipient(bookingID string, sender domain.Role) (recipient, senderName string, ok bool) {
	m.mu.Lock()
	snapshot := m.latest
	m.mu.Unlock()

	for _, b := range snapshot {
		if b.ID.String() != bookingID {
			continue
		}
		if sender == domain.RoleCustomer {
			if b.Mechanic == nil {
				return "", "", false
			}
			return domain.Actor{Role: domain.RoleMechanic, ID: b.Mechanic.ID}.RecipientKey(), b.Customer, true
		}
		name := "Your mechanic"
		if b.Mechanic != nil {
			name = b.Mechanic.Name
		}
		return domain.Actor{Role: domain.RoleCustomer, ID: b.CustomerID}.RecipientKey(), name, true
	}
	return "", "", false
}
