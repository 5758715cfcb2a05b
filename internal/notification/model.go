package notification

import (
	"time"

	"github.com/google/uuid"

	"roadassist_backend/internal/domain"
)

// EventType classifies what a notification is about.
type EventType string

const (
	TypeBooking  EventType = "booking"
	TypeJob      EventType = "job"
	TypeChat     EventType = "chat"
	TypeReminder EventType = "reminder"
	TypeGeneral  EventType = "general"
)

// Event is one notification. Immutable after creation except for Read.
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Type      EventType `gorm:"type:varchar(20);not null" json:"type"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Link      string    `gorm:"type:varchar(255)" json:"link"`
	Recipient string    `gorm:"type:varchar(100);not null;index:idx_event_recipient_read" json:"recipient"`
	Read      bool      `gorm:"not null;default:false;index:idx_event_recipient_read" json:"read"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Event) TableName() string {
	return "notification_events"
}

// NewEvent constructs an unread event with a fresh id.
func NewEvent(eventType EventType, title, message, link, recipient string) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Title:     title,
		Message:   message,
		Link:      link,
		Recipient: recipient,
		CreatedAt: time.Now(),
	}
}

// MatchesRecipient reports whether the event is addressed to the given
// recipient key, either directly or via the broadcast recipient "all".
func (e Event) MatchesRecipient(recipientKey string) bool {
	return e.Recipient == recipientKey || e.Recipient == domain.RecipientAll
}
