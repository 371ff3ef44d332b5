package search

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"shopmate/internal/catalog"
	"shopmate/internal/intent"
)

type mockCompleter struct {
	reply string
	err   error
	calls int
}

func (m *mockCompleter) Available() bool { return true }

func (m *mockCompleter) Complete(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.reply, m.err
}

type unavailableCompleter struct{}

func (unavailableCompleter) Available() bool { return false }
func (unavailableCompleter) Complete(context.Context, string) (string, error) {
	panic("must not be called")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var searchCatalog = []catalog.Product{
	{ID: "prod_a", Name: "Sony Wireless Headphones", Price: 2999, Category: "Electronics",
		Description: "Noise-canceling headphones", Rating: 4.5},
	{ID: "prod_b", Name: "HP Pavilion Gaming Laptop", Price: 58999, Category: "Electronics",
		Description: "15-inch gaming laptop", Rating: 4.3},
	{ID: "prod_c", Name: "Non-Slip Yoga Mat", Price: 899, Category: "Sports",
		Description: "Cushioned yoga mat", Rating: 4.1},
}

func TestSearch_GenerativeRanking(t *testing.T) {
	m := &mockCompleter{reply: `Here you go: ["prod_b", "ghost_id", "prod_a"]`}
	e := NewEngine(m, testLogger())

	got := e.Search(context.Background(), "something for gaming", intent.EntitySet{}, searchCatalog)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (unknown id dropped)", len(got))
	}
	if got[0].ID != "prod_b" || got[1].ID != "prod_a" {
		t.Errorf("order = [%s %s], want [prod_b prod_a]", got[0].ID, got[1].ID)
	}
	if got[0].Score != 1.0 {
		t.Errorf("first score = %v, want 1.0", got[0].Score)
	}
	// The dropped id keeps its rank position, so prod_a scores as rank 2.
	if got[1].Score != 1.0-2*aiScoreStep {
		t.Errorf("second score = %v, want %v", got[1].Score, 1.0-2*aiScoreStep)
	}
}

func TestSearch_EmptyAnswerFallsThrough(t *testing.T) {
	m := &mockCompleter{reply: "[]"}
	e := NewEngine(m, testLogger())

	got := e.Search(context.Background(), "laptop", intent.EntitySet{}, searchCatalog)
	if len(got) != 1 || got[0].ID != "prod_b" {
		t.Fatalf("expected bucket fallback to find prod_b, got %v", got)
	}
}

func TestSearch_AllUnknownIDsFallThrough(t *testing.T) {
	m := &mockCompleter{reply: `["ghost_1", "ghost_2"]`}
	e := NewEngine(m, testLogger())

	got := e.Search(context.Background(), "laptop", intent.EntitySet{}, searchCatalog)
	if len(got) != 1 || got[0].ID != "prod_b" {
		t.Fatalf("expected bucket fallback to find prod_b, got %v", got)
	}
}

func TestSearch_FallsBackOnCompleterError(t *testing.T) {
	m := &mockCompleter{err: context.DeadlineExceeded}
	e := NewEngine(m, testLogger())

	got := e.Search(context.Background(), "laptop for gaming", intent.EntitySet{}, searchCatalog)
	if len(got) != 1 || got[0].ID != "prod_b" {
		t.Fatalf("expected the bucket fallback to find prod_b, got %v", got)
	}
	if m.calls != 1 {
		t.Errorf("completer calls = %d, want 1 (no retries)", m.calls)
	}
}

func TestSearch_FallsBackOnUnparseableOutput(t *testing.T) {
	m := &mockCompleter{reply: "I could not find anything relevant."}
	e := NewEngine(m, testLogger())

	got := e.Search(context.Background(), "wireless headphones", intent.EntitySet{}, searchCatalog)
	if len(got) != 1 || got[0].ID != "prod_a" {
		t.Fatalf("expected the bucket fallback to find prod_a, got %v", got)
	}
}

func TestSearch_SkipsUnavailableBackend(t *testing.T) {
	e := NewEngine(unavailableCompleter{}, testLogger())

	got := e.Search(context.Background(), "yoga mat", intent.EntitySet{}, searchCatalog)
	if len(got) != 1 || got[0].ID != "prod_c" {
		t.Fatalf("expected the generic fallback to find prod_c, got %v", got)
	}
}

func TestSearch_ScoreFloor(t *testing.T) {
	// Rank 20 is far past the point where 1.0 - 0.1*i goes negative.
	reply := `["x","x","x","x","x","x","x","x","x","x","x","x","x","x","x","x","x","x","x","prod_a"]`
	m := &mockCompleter{reply: reply}
	e := NewEngine(m, testLogger())

	got := e.Search(context.Background(), "headphones", intent.EntitySet{}, searchCatalog)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Score != aiScoreFloor {
		t.Errorf("score = %v, want floor %v", got[0].Score, aiScoreFloor)
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`["a","b"]`, 2, true},
		{"```json\n[\"a\"]\n```", 1, true},
		{`The matches are ["a","b","c"], hope that helps!`, 3, true},
		{`[]`, 0, true},
		{`no brackets here`, 0, false},
		{`[not json]`, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseIDList(tt.raw)
		if ok != tt.ok || len(got) != tt.want {
			t.Errorf("parseIDList(%q) = %v, %v; want len %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
