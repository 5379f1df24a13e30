package entities

import "time"

// ChatMessage is one stored conversation record. Payload is opaque: it may be
// plain text, a JSON-encoded string, or an ad-hoc nested object serialized by
// whatever produced it. ID is monotonically increasing and used as a time proxy.
type ChatMessage struct {
	ID        int       `json:"id"`
	SessionID string    `json:"session_id"` // free-text key, loosely a phone number
	Payload   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptEntry is one normalized, role-tagged line of a conversation.
// Derived per request, never persisted.
type TranscriptEntry struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type ChatSession struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	LastMessage  time.Time `json:"last_message"`
}
