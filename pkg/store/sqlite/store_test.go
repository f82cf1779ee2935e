package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/protoforge-ai/protoforge/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "store_test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndListConversations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "portfolio site")
	if err != nil {
		t.Fatal(err)
	}
	if conv.ID == "" {
		t.Fatal("expected generated conversation ID")
	}

	list, err := s.ListConversations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(list))
	}
	if list[0].Title != "portfolio site" {
		t.Errorf("unexpected title: %s", list[0].Title)
	}
}

func TestRecentTurnsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "t")
	if err != nil {
		t.Fatal(err)
	}

	contents := []string{"first", "second", "third", "fourth"}
	for i, c := range contents {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		if _, err := s.AppendMessage(ctx, conv.ID, role, c); err != nil {
			t.Fatal(err)
		}
	}

	turns, err := s.RecentTurns(ctx, conv.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Content != "third" || turns[1].Content != "fourth" {
		t.Errorf("expected the two most recent turns oldest-first, got %+v", turns)
	}
}

func TestRecentTurnsEmptyConversation(t *testing.T) {
	s := newTestStore(t)
	turns, err := s.RecentTurns(context.Background(), "missing", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 0 {
		t.Errorf("expected no turns, got %d", len(turns))
	}
}

func TestCurrentArtifact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "t")
	if err != nil {
		t.Fatal(err)
	}

	// Absent before any revision exists.
	markup, err := s.CurrentArtifact(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if markup != "" {
		t.Errorf("expected no artifact, got %q", markup)
	}

	first := models.GenerationResult{Markup: "<h1>v1</h1>", Explanation: "initial"}
	if _, err := s.SavePrototype(ctx, conv.ID, first); err != nil {
		t.Fatal(err)
	}
	second := models.GenerationResult{Markup: "<h1>v2</h1>", Styles: "h1{color:red}", Explanation: "retitled"}
	if _, err := s.SavePrototype(ctx, conv.ID, second); err != nil {
		t.Fatal(err)
	}

	markup, err = s.CurrentArtifact(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if markup != "<h1>v2</h1>" {
		t.Errorf("expected latest revision, got %q", markup)
	}
}

func TestSavePrototypeFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "t")
	if err != nil {
		t.Fatal(err)
	}

	res := models.GenerationResult{
		Markup:      "<div>page</div>",
		Styles:      "div{margin:0}",
		Script:      "console.log('hi')",
		Explanation: "a page",
	}
	p, err := s.SavePrototype(ctx, conv.ID, res)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" {
		t.Error("expected generated prototype ID")
	}
	if p.Styles != res.Styles || p.Script != res.Script {
		t.Errorf("prototype fields not preserved: %+v", p)
	}
}
