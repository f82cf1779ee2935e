// Package audit keeps a log of generation API requests: which
// conversation, cache hit or miss, and how long the call took.
package audit

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/protoforge-ai/protoforge/pkg/models"
)

const retentionCheckInterval = time.Hour

// Logger writes and queries request log entries in SQLite.
type Logger struct {
	db            *sql.DB
	retentionDays int
	done          chan struct{}
	wg            sync.WaitGroup
	stopOnce      sync.Once
}

const createRequestLog = `
CREATE TABLE IF NOT EXISTS request_log (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	model TEXT NOT NULL,
	cache_hit INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_request_log_created ON request_log(created_at);
CREATE INDEX IF NOT EXISTS idx_request_log_conversation ON request_log(conversation_id);
`

// New opens the request log database. If retentionDays > 0, a background
// loop prunes entries older than the retention window.
func New(dbPath string, retentionDays int) (*Logger, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open request log db: %w", err)
	}
	if _, err := db.Exec(createRequestLog); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate request log db: %w", err)
	}

	l := &Logger{
		db:            db,
		retentionDays: retentionDays,
		done:          make(chan struct{}),
	}

	if retentionDays > 0 {
		l.wg.Add(1)
		go l.retentionLoop()
	}

	return l, nil
}

// Log inserts a request log entry.
func (l *Logger) Log(ctx context.Context, entry models.RequestEntry) error {
	if l == nil || l.db == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO request_log (id, conversation_id, kind, model, cache_hit, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ConversationID, entry.Kind, entry.Model, entry.CacheHit, entry.LatencyMs, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("log request: %w", err)
	}
	return nil
}

// Recent returns the most recent limit entries, newest first. An empty
// conversationID returns entries across all conversations.
func (l *Logger) Recent(ctx context.Context, conversationID string, limit int) ([]models.RequestEntry, error) {
	query := `SELECT id, conversation_id, kind, model, cache_hit, latency_ms, created_at
		FROM request_log`
	args := []any{}
	if conversationID != "" {
		query += ` WHERE conversation_id = ?`
		args = append(args, conversationID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request log: %w", err)
	}
	defer rows.Close()

	var out []models.RequestEntry
	for rows.Next() {
		var e models.RequestEntry
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.Kind, &e.Model, &e.CacheHit, &e.LatencyMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request log entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune removes entries older than the retention window.
func (l *Logger) Prune(ctx context.Context) error {
	if l.retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -l.retentionDays)
	_, err := l.db.ExecContext(ctx, `DELETE FROM request_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("prune request log: %w", err)
	}
	return nil
}

func (l *Logger) retentionLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(retentionCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = l.Prune(context.Background())
		case <-l.done:
			return
		}
	}
}

// Close stops the retention loop and releases the database connection.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() { close(l.done) })
	l.wg.Wait()
	return l.db.Close()
}
