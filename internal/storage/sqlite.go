package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// retainTurns caps the per-session conversation log. Older turns are
// deleted whenever a new one is appended.
const retainTurns = 50

// Store wraps a SQLite database holding carts and conversation logs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "shopmate.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Cart ---

// AddCartItem adds quantity of a product to a session's cart, creating the
// line if needed.
func (s *Store) AddCartItem(sessionID, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO cart_items (session_id, product_id, quantity, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, product_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		sessionID, productID, quantity, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// SetCartQuantity replaces the quantity of an existing cart line. A
// quantity below one removes the line.
func (s *Store) SetCartQuantity(sessionID, productID string, quantity int) error {
	if quantity < 1 {
		return s.RemoveCartItem(sessionID, productID)
	}
	res, err := s.db.Exec(`UPDATE cart_items SET quantity = ? WHERE session_id = ? AND product_id = ?`,
		quantity, sessionID, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveCartItem deletes one product line from a session's cart.
func (s *Store) RemoveCartItem(sessionID, productID string) error {
	res, err := s.db.Exec(`DELETE FROM cart_items WHERE session_id = ? AND product_id = ?`,
		sessionID, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCart empties a session's cart.
func (s *Store) ClearCart(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM cart_items WHERE session_id = ?`, sessionID)
	return err
}

// GetCart returns a session's cart lines in the order they were first added.
func (s *Store) GetCart(sessionID string) ([]CartItem, error) {
	rows, err := s.db.Query(`
		SELECT session_id, product_id, quantity, added_at
		FROM cart_items WHERE session_id = ? ORDER BY added_at ASC, product_id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		var addedAt string
		if err := rows.Scan(&item.SessionID, &item.ProductID, &item.Quantity, &addedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, addedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing added_at: %w", err)
		}
		item.AddedAt = t
		items = append(items, item)
	}
	return items, rows.Err()
}

// --- Conversation log ---

// AppendTurn records one utterance and trims the session's log to the
// retention cap.
func (s *Store) AppendTurn(t Turn) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning append transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.Exec(`
		INSERT INTO conversation_turns (session_id, role, content, intent, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.SessionID, t.Role, t.Content, t.Intent, createdAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM conversation_turns
		WHERE session_id = ? AND seq NOT IN (
			SELECT seq FROM conversation_turns WHERE session_id = ?
			ORDER BY seq DESC LIMIT ?
		)`, t.SessionID, t.SessionID, retainTurns,
	); err != nil {
		return fmt.Errorf("trimming turns: %w", err)
	}

	return tx.Commit()
}

// RecentTurns returns up to limit of a session's newest turns in
// chronological order.
func (s *Store) RecentTurns(sessionID string, limit int) ([]Turn, error) {
	rows, err := s.db.Query(`
		SELECT seq, session_id, role, content, intent, created_at
		FROM conversation_turns WHERE session_id = ?
		ORDER BY seq DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var createdAt string
		if err := rows.Scan(&t.Seq, &t.SessionID, &t.Role, &t.Content, &t.Intent, &createdAt); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		t.CreatedAt = ts
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from the query; callers want chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// TurnCount reports how many turns a session currently retains.
func (s *Store) TurnCount(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM conversation_turns WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
