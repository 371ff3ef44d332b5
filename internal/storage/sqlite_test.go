package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsApply(t *testing.T) {
	s := openTestStore(t)
	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) == 0 || versions[0] != 1 {
		t.Errorf("versions = %v, want [1 ...]", versions)
	}
}

func TestCartAddAccumulates(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddCartItem("sess", "prod_001", 1); err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}
	if err := s.AddCartItem("sess", "prod_001", 2); err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}

	items, err := s.GetCart("sess")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("Quantity = %d, want 3", items[0].Quantity)
	}
}

func TestCartIsSessionScoped(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddCartItem("alpha", "prod_001", 1); err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}
	if err := s.AddCartItem("beta", "prod_002", 1); err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}

	items, err := s.GetCart("alpha")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "prod_001" {
		t.Fatalf("alpha cart = %v", items)
	}
}

func TestSetCartQuantity(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetCartQuantity("sess", "prod_001", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of missing line: err = %v, want ErrNotFound", err)
	}

	if err := s.AddCartItem("sess", "prod_001", 1); err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}
	if err := s.SetCartQuantity("sess", "prod_001", 5); err != nil {
		t.Fatalf("SetCartQuantity: %v", err)
	}
	items, _ := s.GetCart("sess")
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("cart = %v, want quantity 5", items)
	}

	// Zero quantity removes the line.
	if err := s.SetCartQuantity("sess", "prod_001", 0); err != nil {
		t.Fatalf("SetCartQuantity(0): %v", err)
	}
	items, _ = s.GetCart("sess")
	if len(items) != 0 {
		t.Fatalf("cart = %v, want empty", items)
	}
}

func TestRemoveAndClearCart(t *testing.T) {
	s := openTestStore(t)

	if err := s.RemoveCartItem("sess", "prod_001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove of missing line: err = %v, want ErrNotFound", err)
	}

	s.AddCartItem("sess", "prod_001", 1)
	s.AddCartItem("sess", "prod_002", 1)

	if err := s.RemoveCartItem("sess", "prod_001"); err != nil {
		t.Fatalf("RemoveCartItem: %v", err)
	}
	if err := s.ClearCart("sess"); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	items, _ := s.GetCart("sess")
	if len(items) != 0 {
		t.Fatalf("cart = %v, want empty", items)
	}
}

func TestConversationLogRoundTrip(t *testing.T) {
	s := openTestStore(t)

	turns := []Turn{
		{SessionID: "sess", Role: RoleUser, Content: "hi", Intent: "greeting"},
		{SessionID: "sess", Role: RoleAssistant, Content: "Hello!"},
		{SessionID: "sess", Role: RoleUser, Content: "show me laptops", Intent: "product_search"},
	}
	for _, turn := range turns {
		if err := s.AppendTurn(turn); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	got, err := s.RecentTurns("sess", 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, turn := range turns {
		if got[i].Content != turn.Content || got[i].Role != turn.Role {
			t.Errorf("turn %d = %+v, want %+v", i, got[i], turn)
		}
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestConversationLogRetention(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < retainTurns+10; i++ {
		turn := Turn{
			SessionID: "sess",
			Role:      RoleUser,
			Content:   fmt.Sprintf("message %d", i),
			CreatedAt: time.Now(),
		}
		if err := s.AppendTurn(turn); err != nil {
			t.Fatalf("AppendTurn %d: %v", i, err)
		}
	}

	n, err := s.TurnCount("sess")
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if n != retainTurns {
		t.Errorf("retained = %d, want %d", n, retainTurns)
	}

	// The survivors are the newest turns.
	got, err := s.RecentTurns("sess", retainTurns)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if got[0].Content != "message 10" {
		t.Errorf("oldest retained = %q, want %q", got[0].Content, "message 10")
	}
}

func TestRecentTurnsLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 20; i++ {
		s.AppendTurn(Turn{SessionID: "sess", Role: RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	got, err := s.RecentTurns("sess", 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[0].Content != "m10" || got[9].Content != "m19" {
		t.Errorf("window = [%s .. %s], want [m10 .. m19]", got[0].Content, got[9].Content)
	}
}
