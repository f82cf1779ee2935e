package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/protoforge-ai/protoforge/pkg/models"
)

func newTestLogger(t *testing.T, retentionDays int) *Logger {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "audit_test.db")
	l, err := New(dbPath, retentionDays)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLogAndRecent(t *testing.T) {
	l := newTestLogger(t, 0)
	ctx := context.Background()

	entries := []models.RequestEntry{
		{ConversationID: "c1", Kind: "generation", Model: "gpt-4o", CacheHit: false, LatencyMs: 1200},
		{ConversationID: "c1", Kind: "generation", Model: "gpt-4o", CacheHit: true, LatencyMs: 1},
		{ConversationID: "c2", Kind: "chat", Model: "gpt-4o", CacheHit: false, LatencyMs: 400},
	}
	for i, e := range entries {
		e.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := l.Log(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.Recent(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Kind != "chat" {
		t.Errorf("expected newest entry first, got %+v", got[0])
	}

	byConv, err := l.Recent(ctx, "c1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byConv) != 2 {
		t.Fatalf("expected 2 entries for c1, got %d", len(byConv))
	}
	if !byConv[0].CacheHit {
		t.Error("expected the newest c1 entry to be the cache hit")
	}
}

func TestPrune(t *testing.T) {
	l := newTestLogger(t, 7)
	ctx := context.Background()

	old := models.RequestEntry{
		ConversationID: "c1", Kind: "generation", Model: "gpt-4o",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -30),
	}
	fresh := models.RequestEntry{
		ConversationID: "c1", Kind: "generation", Model: "gpt-4o",
		CreatedAt: time.Now().UTC(),
	}
	if err := l.Log(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := l.Log(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	if err := l.Prune(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := l.Recent(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry after prune, got %d", len(got))
	}
}
