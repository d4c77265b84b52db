package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const kvTable = "kv"

// Get returns the raw value stored under key. The boolean is false when the
// key has never been written.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query, args := s.builder().
		Select("value").
		From(entsql.Table(kvTable)).
		Where(entsql.EQ("key", key)).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return "", false, fmt.Errorf("query %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return "", false, fmt.Errorf("scan %q: %w", key, err)
	}
	return value, true, rows.Err()
}

// Put replaces the value stored under key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	query, args := s.builder().
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// History is an ordered, append-mostly list of records kept as a single JSON
// document under a fixed key. It is read in full and rewritten in full.
type History[T any] struct {
	store *Store
	key   string
}

// NewHistory returns the history stored under key.
func NewHistory[T any](s *Store, key string) *History[T] {
	return &History[T]{store: s, key: key}
}

// Load returns every record in insertion order. A missing key is an empty history.
func (h *History[T]) Load(ctx context.Context) ([]T, error) {
	raw, ok, err := h.store.Get(ctx, h.key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %s history: %w", h.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save replaces the whole history with items.
func (h *History[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s history: %w", h.key, err)
	}
	return h.store.Put(ctx, h.key, string(data))
}
