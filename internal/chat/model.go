package chat

import (
	"time"

	"roadassist_backend/internal/domain"
)

// Message is one chat message within a booking's conversation. Immutable
// once appended; the persisted log's insertion order is the order,
// timestamps are advisory.
type Message struct {
	Sender domain.Role `json:"sender"`
	Text   string      `json:"text"`
	SentAt time.Time   `json:"sent_at"`
}

// conversationKeyPrefix namespaces one transport key per conversation.
const conversationKeyPrefix = "chat_"

// ConversationKey returns the transport key for a booking's conversation.
func ConversationKey(bookingID string) string {
	return conversationKeyPrefix + bookingID
}

// BookingIDFromKey extracts the booking id from a conversation key. The
// second return is false for keys outside the chat namespace.
func BookingIDFromKey(key string) (string, bool) {
	if len(key) <= len(conversationKeyPrefix) || key[:len(conversationKeyPrefix)] != conversationKeyPrefix {
		return "", false
	}
	return key[len(conversationKeyPrefix):], true
}
