package session

import (
	"context"
	"slices"
	"sync"

	"github.com/abhisek/learnforge/internal/store"
)

// NewStoreHistory returns the durable attempt history kept in s.
func NewStoreHistory(s *store.Store) HistoryStore {
	return store.NewHistory[TestAttempt](s, store.AttemptHistoryKey)
}

// MemoryHistory keeps the history in process. SaveErr, when set, is
// returned by every Save and leaves the stored history unchanged.
type MemoryHistory struct {
	mu       sync.Mutex
	attempts []TestAttempt
	saves    int

	SaveErr error
}

// NewMemoryHistory returns a history seeded with attempts.
func NewMemoryHistory(attempts ...TestAttempt) *MemoryHistory {
	return &MemoryHistory{attempts: slices.Clone(attempts)}
}

func (m *MemoryHistory) Load(context.Context) ([]TestAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.attempts)
	if out == nil {
		out = []TestAttempt{}
	}
	return out, nil
}

func (m *MemoryHistory) Save(_ context.Context, attempts []TestAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.attempts = slices.Clone(attempts)
	m.saves++
	return nil
}

// Saves returns the number of successful saves.
func (m *MemoryHistory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
