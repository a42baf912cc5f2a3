/*
store.go - Key-value persistence contract

PURPOSE:
  Defines the storage boundary for the production tracker. Every collection
  (clients, items, daily headers, daily rows) is persisted as one JSON blob
  under a fixed key, and identity counters live under their own keys.
  Repositories read a whole collection, mutate it in memory and write it back.

KEY LAYOUT:
  clients                      -> []Client
  items                        -> []Item
  daily_headers                -> []DailyHeader
  daily_rows                   -> []DailyRow
  client_id_counter            -> int
  daily_header_id_counter      -> int
  daily_row_id_counter         -> int
  daily_entry_draft_<date>     -> Draft

TRANSACTIONS:
  A save that touches several keys (items, headers, rows) runs inside
  TxStore.WithTx so readers never observe a half-applied save.

IMPLEMENTATIONS:
  - kv/memory.go:          In-memory, for tests and ephemeral runs
  - store/sqlite/sqlite.go: Embedded SQLite file
  - store/mysql/mysql.go:   MySQL server

SEE ALSO:
  - production/service.go: Repository layer on top of Store
*/
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// =============================================================================
// STORE - Raw key-value access
// =============================================================================

// Store persists opaque values under string keys.
type Store interface {
	// Get returns the raw value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// TxStore is a Store that can group writes atomically.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional view of the store.
	// If fn returns an error every write made through the view is discarded.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// TYPED HELPERS
// =============================================================================

// Get decodes the JSON value stored under key into T.
// def is returned when the key is absent or its value does not parse.
func Get[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, nil
	}
	return v, nil
}

// Set JSON-encodes v and stores it under key.
func Set(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// NextID returns the current value of the counter stored under key
// (1 when unset) and persists current+1. Ids are never reused.
func NextID(ctx context.Context, s Store, key string) (int, error) {
	current, err := Get(ctx, s, key, 1)
	if err != nil {
		return 0, err
	}
	if current < 1 {
		current = 1
	}
	if err := Set(ctx, s, key, current+1); err != nil {
		return 0, err
	}
	return current, nil
}

// Update runs fn inside a transaction when s supports it, and directly
// against s otherwise.
func Update(ctx context.Context, s Store, fn func(Store) error) error {
	if tx, ok := s.(TxStore); ok {
		return tx.WithTx(ctx, fn)
	}
	return fn(s)
}
