package models

import "time"

// Conversation is a stored chat session.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredMessage is a persisted conversation turn.
type StoredMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Prototype is a persisted artifact revision tied to a conversation.
type Prototype struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Markup         string    `json:"html"`
	Styles         string    `json:"css,omitempty"`
	Script         string    `json:"js,omitempty"`
	Explanation    string    `json:"explanation"`
	CreatedAt      time.Time `json:"created_at"`
}

// CacheStats reports cache performance metrics.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// RequestEntry records one handled generation request, cache hit or not.
type RequestEntry struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Kind           string    `json:"kind"` // "generation" or "chat"
	Model          string    `json:"model"`
	CacheHit       bool      `json:"cache_hit"`
	LatencyMs      int64     `json:"latency_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
