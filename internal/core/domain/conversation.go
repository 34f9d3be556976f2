package domain

import "time"

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role      Role      `json:"role" bson:"role"`
	Text      string    `json:"text" bson:"text"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// ConversationRecord is the single persisted conversation owned by a user.
// Messages are append-only and kept in insertion order.
type ConversationRecord struct {
	UserID    string    `bson:"user_id"`
	Messages  []Turn    `bson:"messages"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewExchange builds the user/assistant pair appended after a successful
// generation call. Both turns share the same timestamp base; the assistant
// turn is stamped no earlier than the user turn.
func NewExchange(message, reply string, asked, answered time.Time) []Turn {
	if answered.Before(asked) {
		answered = asked
	}
	return []Turn{
		{Role: RoleUser, Text: message, Timestamp: asked.UTC()},
		{Role: RoleAssistant, Text: reply, Timestamp: answered.UTC()},
	}
}
