// Package session scopes cart and conversation state to a session id and
// serializes concurrent access per session. Requests without a session id
// share the "default" session.
package session

import (
	"sync"

	"shopmate/internal/storage"
)

// DefaultID is used when a request carries no session id.
const DefaultID = "default"

// Manager guards per-session state. All methods are safe for concurrent
// use; operations on the same session are serialized so interleaved cart
// updates cannot race each other.
type Manager struct {
	store *storage.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a Manager backed by the given store.
func NewManager(store *storage.Store) *Manager {
	return &Manager{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Normalize maps an empty session id to DefaultID.
func Normalize(id string) string {
	if id == "" {
		return DefaultID
	}
	return id
}

func (m *Manager) lock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// AddToCart adds quantity of a product to the session's cart.
func (m *Manager) AddToCart(id, productID string, quantity int) error {
	sid := Normalize(id)
	l := m.lock(sid)
	l.Lock()
	defer l.Unlock()
	return m.store.AddCartItem(sid, productID, quantity)
}

// SetQuantity replaces a cart line's quantity; zero or less removes it.
func (m *Manager) SetQuantity(id, productID string, quantity int) error {
	sid := Normalize(id)
	l := m.lock(sid)
	l.Lock()
	defer l.Unlock()
	return m.store.SetCartQuantity(sid, productID, quantity)
}

// RemoveFromCart deletes a cart line.
func (m *Manager) RemoveFromCart(id, productID string) error {
	sid := Normalize(id)
	l := m.lock(sid)
	l.Lock()
	defer l.Unlock()
	return m.store.RemoveCartItem(sid, productID)
}

// ClearCart empties the session's cart.
func (m *Manager) ClearCart(id string) error {
	sid := Normalize(id)
	l := m.lock(sid)
	l.Lock()
	defer l.Unlock()
	return m.store.ClearCart(sid)
}

// Cart returns the session's cart lines.
func (m *Manager) Cart(id string) ([]storage.CartItem, error) {
	sid := Normalize(id)
	l := m.lock(sid)
	l.Lock()
	defer l.Unlock()
	return m.store.GetCart(sid)
}

// AppendTurn records one conversation turn for the session.
func (m *Manager) AppendTurn(id, role, content, intentLabel string) error {
	sid := Normalize(id)
	l := m.lock(sid)
	l.Lock()
	defer l.Unlock()
	return m.store.AppendTurn(storage.Turn{
		SessionID: sid,
		Role:      role,
		Content:   content,
		Intent:    intentLabel,
	})
}

// History returns up to limit of the session's newest turns, oldest first.
func (m *Manager) History(id string, limit int) ([]storage.Turn, error) {
	sid := Normalize(id)
	l := m.lock(sid)
	l.Lock()
	defer l.Unlock()
	return m.store.RecentTurns(sid, limit)
}
