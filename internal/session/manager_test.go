package session

import (
	"fmt"
	"sync"
	"testing"

	"shopmate/internal/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewManager(store)
}

func TestNormalize(t *testing.T) {
	if got := Normalize(""); got != DefaultID {
		t.Errorf("Normalize(\"\") = %q, want %q", got, DefaultID)
	}
	if got := Normalize("abc"); got != "abc" {
		t.Errorf("Normalize(\"abc\") = %q", got)
	}
}

func TestEmptySessionSharesDefaultCart(t *testing.T) {
	m := newTestManager(t)

	if err := m.AddToCart("", "prod_001", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	items, err := m.Cart(DefaultID)
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "prod_001" {
		t.Fatalf("default cart = %v", items)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newTestManager(t)

	m.AddToCart("alpha", "prod_001", 1)
	m.AddToCart("beta", "prod_002", 1)
	m.AppendTurn("alpha", storage.RoleUser, "hello", "greeting")

	beta, err := m.Cart("beta")
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if len(beta) != 1 || beta[0].ProductID != "prod_002" {
		t.Fatalf("beta cart = %v", beta)
	}

	turns, err := m.History("beta", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("beta history = %v, want empty", turns)
	}
}

func TestConcurrentAddsAllLand(t *testing.T) {
	m := newTestManager(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := m.AddToCart("sess", "prod_001", 1); err != nil {
				t.Errorf("AddToCart: %v", err)
			}
			if err := m.AppendTurn("sess", storage.RoleUser, fmt.Sprintf("m%d", n), ""); err != nil {
				t.Errorf("AppendTurn: %v", err)
			}
		}(i)
	}
	wg.Wait()

	items, err := m.Cart("sess")
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 20 {
		t.Fatalf("cart = %v, want one line with quantity 20", items)
	}

	turns, err := m.History("sess", 50)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(turns) != 20 {
		t.Fatalf("history len = %d, want 20", len(turns))
	}
}
