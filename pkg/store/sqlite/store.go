// Package sqlite persists conversations, their messages, and generated
// prototype revisions.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/protoforge-ai/protoforge/pkg/models"
)

// Store implements the conversation history and current artifact sources
// on a SQLite database.
type Store struct {
	db *sql.DB
}

const createTables = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);

CREATE TABLE IF NOT EXISTS prototypes (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	html TEXT NOT NULL,
	css TEXT NOT NULL DEFAULT '',
	js TEXT NOT NULL DEFAULT '',
	explanation TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_prototypes_conversation ON prototypes(conversation_id, created_at);
`

// New opens the database at dbPath and runs auto-migration.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	if _, err := db.Exec(createTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}

// CreateConversation inserts a new conversation and returns it.
func (s *Store) CreateConversation(ctx context.Context, title string) (models.Conversation, error) {
	conv := models.Conversation{
		ID:        newID(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at) VALUES (?, ?, ?)`,
		conv.ID, conv.Title, conv.CreatedAt,
	)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns all conversations, newest first.
func (s *Store) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM conversations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendMessage stores a conversation turn.
func (s *Store) AppendMessage(ctx context.Context, conversationID, role, content string) (models.StoredMessage, error) {
	msg := models.StoredMessage{
		ID:             newID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return models.StoredMessage{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// RecentTurns returns the most recent limit turns of a conversation,
// ordered oldest to newest. ULIDs sort lexicographically by creation time,
// which keeps same-timestamp inserts stable.
func (s *Store) RecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM (
			SELECT role, content, id FROM messages
			WHERE conversation_id = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// SavePrototype stores a new artifact revision for a conversation.
func (s *Store) SavePrototype(ctx context.Context, conversationID string, res models.GenerationResult) (models.Prototype, error) {
	p := models.Prototype{
		ID:             newID(),
		ConversationID: conversationID,
		Markup:         res.Markup,
		Styles:         res.Styles,
		Script:         res.Script,
		Explanation:    res.Explanation,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prototypes (id, conversation_id, html, css, js, explanation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ConversationID, p.Markup, p.Styles, p.Script, p.Explanation, p.CreatedAt,
	)
	if err != nil {
		return models.Prototype{}, fmt.Errorf("save prototype: %w", err)
	}
	return p, nil
}

// CurrentArtifact returns the markup of the latest prototype revision for
// a conversation, or "" if none exists.
func (s *Store) CurrentArtifact(ctx context.Context, conversationID string) (string, error) {
	var markup string
	err := s.db.QueryRowContext(ctx,
		`SELECT html FROM prototypes WHERE conversation_id = ? ORDER BY id DESC LIMIT 1`,
		conversationID,
	).Scan(&markup)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("current artifact: %w", err)
	}
	return markup, nil
}
