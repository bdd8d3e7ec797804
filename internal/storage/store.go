// Package storage owns the persisted application state: the ordered
// transaction list and the recurring description labels.
//
// Persistence is a string-keyed key-value layer on SQLite. Each list is
// stored as a single JSON array value (`transactions` most-recent-first,
// `recurring_descs` raw strings), read once at open and rewritten in
// full on every mutation. Mutations replace the whole in-memory list
// under a lock, so concurrent readers always observe either the pre-
// or post-mutation snapshot.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/oraculx/financewise/internal/core"

	_ "modernc.org/sqlite"
)

const (
	keyTransactions = "transactions"
	keyRecurring    = "recurring_descs"
)

var ErrNotFound = errors.New("transaction not found")

// Store is the single owner of both persisted lists. All other
// components receive copies or propose mutations through its methods.
type Store struct {
	db *sql.DB

	mu           sync.RWMutex
	transactions []core.Transaction
	recurring    []string
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load persisted state: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// load reads both lists once. A missing key means an empty list.
func (s *Store) load() error {
	if err := s.readKey(keyTransactions, &s.transactions); err != nil {
		return fmt.Errorf("read %s: %w", keyTransactions, err)
	}
	if err := s.readKey(keyRecurring, &s.recurring); err != nil {
		return fmt.Errorf("read %s: %w", keyRecurring, err)
	}
	return nil
}

func (s *Store) readKey(key string, dest any) error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}

func (s *Store) writeKey(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	if err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}

// Transactions returns a copy of the list, most-recent-first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Recurring returns a copy of the recurring description labels.
func (s *Store) Recurring() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.recurring))
	copy(out, s.recurring)
	return out
}

// Append prepends a transaction and rewrites the persisted list.
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Transaction, 0, len(s.transactions)+1)
	next = append(next, tx)
	next = append(next, s.transactions...)

	if err := s.writeKey(ctx, keyTransactions, next); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	s.transactions = next

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"description", tx.Description,
		"amount", tx.Amount,
		"type", tx.Type,
		"category", tx.Category)
	return nil
}

// AppendBulk prepends a batch in the given order with a single rewrite.
// txs[0] ends up at the front of the list.
func (s *Store) AppendBulk(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Transaction, 0, len(s.transactions)+len(txs))
	next = append(next, txs...)
	next = append(next, s.transactions...)

	if err := s.writeKey(ctx, keyTransactions, next); err != nil {
		return fmt.Errorf("append transactions: %w", err)
	}
	s.transactions = next

	slog.InfoContext(ctx, "Transactions imported", "count", len(txs), "total", len(next))
	return nil
}

// Remove deletes the transaction with the given id.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(s.transactions) {
		return ErrNotFound
	}

	if err := s.writeKey(ctx, keyTransactions, next); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}
	s.transactions = next

	slog.InfoContext(ctx, "Transaction removed", "id", id, "remaining", len(next))
	return nil
}

// AddRecurring stores a raw description label unless one with the same
// canonical form already exists. Reports whether the label was added.
// The no-duplicates invariant is enforced here, at insertion.
func (s *Store) AddRecurring(ctx context.Context, desc string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	canonical := core.Normalize(desc)
	for _, existing := range s.recurring {
		if core.Normalize(existing) == canonical {
			return false, nil
		}
	}

	next := make([]string, 0, len(s.recurring)+1)
	next = append(next, s.recurring...)
	next = append(next, desc)

	if err := s.writeKey(ctx, keyRecurring, next); err != nil {
		return false, fmt.Errorf("add recurring description: %w", err)
	}
	s.recurring = next

	slog.InfoContext(ctx, "Recurring description saved", "description", desc)
	return true, nil
}

// RemoveRecurring deletes a label by exact string match. Removing an
// absent label is not an error.
func (s *Store) RemoveRecurring(ctx context.Context, desc string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.recurring))
	for _, existing := range s.recurring {
		if existing != desc {
			next = append(next, existing)
		}
	}
	if len(next) == len(s.recurring) {
		return nil
	}

	if err := s.writeKey(ctx, keyRecurring, next); err != nil {
		return fmt.Errorf("remove recurring description: %w", err)
	}
	s.recurring = next

	slog.InfoContext(ctx, "Recurring description removed", "description", desc)
	return nil
}
