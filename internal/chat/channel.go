package chat

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"roadassist_backend/internal/domain"
	"roadassist_backend/internal/transport"
)

// Service is the durable per-conversation message log built on the
// transport. Each booking id maps to exactly one transport key, so
// conversations cannot leak into one another.
type Service interface {
	// History returns the persisted message log in insertion order.
	// A missing or corrupt log reads as empty.
	History(ctx context.Context, bookingID string) []Message
	// Append persists a new message at the end of the log and broadcasts
	// the change, the writing context's subscribers included.
	Append(ctx context.Context, bookingID string, sender domain.Role, text string) (Message, error)
	// Subscribe redelivers the full history whenever the conversation's
	// key changes. The returned function cancels the subscription.
	Subscribe(bookingID string, onChange func([]Message)) (unsubscribe func())
}

type serviceImpl struct {
	transport transport.Transport
	logger    *zap.Logger
}

// NewService creates a chat service over the given transport.
func NewService(t transport.Transport, logger *zap.Logger) Service {
	return &serviceImpl{
		transport: t,
		logger:    logger.Named("ChatService"),
	}
}

func (s *serviceImpl) History(ctx context.Context, bookingID string) []Message {
	raw, ok, err := s.transport.Read(ctx, ConversationKey(bookingID))
	if err != nil {
		s.logger.Error("Failed to read conversation, serving empty history",
			zap.String("bookingID", bookingID), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return s.decode(bookingID, raw)
}

func (s *serviceImpl) Append(ctx context.Context, bookingID string, sender domain.Role, text string) (Message, error) {
	msg := Message{Sender: sender, Text: text, SentAt: time.Now()}

	// Read-modify-write of the full log. Two contexts appending at once is
	// a last-write-wins race on the conversation key; see DESIGN.md.
	history := append(s.History(ctx, bookingID), msg)

	raw, err := json.Marshal(history)
	if err != nil {
		return Message{}, err
	}
	if err := s.transport.Write(ctx, ConversationKey(bookingID), string(raw)); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (s *serviceImpl) Subscribe(bookingID string, onChange func([]Message)) func() {
	key := ConversationKey(bookingID)
	return s.transport.Subscribe(func(m transport.Message) {
		if m.Key != key {
			return
		}
		if m.NewValue == nil {
			onChange(nil)
			return
		}
		onChange(s.decode(bookingID, *m.NewValue))
	})
}

// decode falls back to an empty log on corrupt data; a broken conversation
// must never take a subscriber down.
func (s *serviceImpl) decode(bookingID, raw string) []Message {
	var history []Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.logger.Warn("Corrupt conversation log, treating as empty",
			zap.String("bookingID", bookingID), zap.Error(err))
		return nil
	}
	return history
}
