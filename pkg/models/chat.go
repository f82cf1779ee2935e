package models

// Message roles used across the context pipeline.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single message in the sequence sent to the generation API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationTurn is one stored exchange unit of a conversation.
// The core only ever reads a bounded suffix of these; it never mutates them.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
