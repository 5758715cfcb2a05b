// File: internal/reminder/service.go
package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"roadassist_backend/internal/domain"
	"roadassist_backend/internal/notification"
	"roadassist_backend/internal/transport"
)

// StorageKey is the transport key holding the serialized reminder list.
const StorageKey = "serviceReminders"

const dateLayout = "2006-01-02"

// Reminder is one scheduled service reminder.
type Reminder struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // YYYY-MM-DD
	ServiceName string `json:"serviceName"`
	Vehicle     string `json:"vehicle"`
}

// Service scans persisted reminders and emits one notification per due
// reminder per session. The notified-ID set is owned here and reset
// explicitly at session start.
type Service struct {
	transport transport.Transport
	notifier  notification.Service
	logger    *zap.Logger

	mu       sync.Mutex
	notified map[string]struct{}
}

// NewService creates a reminder service with an empty notified set.
func NewService(t transport.Transport, notifier notification.Service, logger *zap.Logger) *Service {
	return &Service{
		transport: t,
		notifier:  notifier,
		logger:    logger.Named("ReminderService"),
		notified:  make(map[string]struct{}),
	}
}

// ResetSession clears the notified set; due reminders fire again in the
// new session.
func (s *Service) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified = make(map[string]struct{})
}

// Scan reads the reminder list and notifies for every reminder due on or
// before now's date that has not fired this session. Returns the number of
// notifications emitted.
func (s *Service) Scan(ctx context.Context, now time.Time) int {
	reminders := s.load(ctx)
	today := now.Format(dateLayout)

	emitted := 0
	for _, r := range reminders {
		if r.Date > today {
			continue
		}

		s.mu.Lock()
		_, already := s.notified[r.ID]
		if !already {
			s.notified[r.ID] = struct{}{}
		}
		s.mu.Unlock()
		if already {
			continue
		}

		event := notification.NewEvent(
			notification.TypeReminder,
			"Service Reminder",
			fmt.Sprintf("Your %s is due for its %s.", r.Vehicle, r.ServiceName),
			"/reminders",
			domain.RecipientAll,
		)
		if err := s.notifier.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish reminder notification",
				zap.String("reminderID", r.ID), zap.Error(err))
			continue
		}
		emitted++
	}
	return emitted
}

// load deserializes the persisted reminder list; missing or corrupt data
// reads as empty.
func (s *Service) load(ctx context.Context) []Reminder {
	raw, ok, err := s.transport.Read(ctx, StorageKey)
	if err != nil {
		s.logger.Error("Failed to read reminders, treating as empty", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var reminders []Reminder
	if err := json.Unmarshal([]byte(raw), &reminders); err != nil {
		s.logger.Warn("Corrupt reminder list, treating as empty", zap.Error(err))
		return nil
	}
	return reminders
}
