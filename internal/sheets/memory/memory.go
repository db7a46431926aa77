// Package memory is an in-process LedgerWriter for tests and for running
// the worker without Google credentials.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"carteira/internal/core"
)

type Store struct {
	mu    sync.Mutex
	order []string
	rows  map[string]core.LedgerEntry
}

func New() *Store {
	return &Store{rows: map[string]core.LedgerEntry{}}
}

// AppendEntry stores e, replacing any previous row with the same uuid.
func (s *Store) AppendEntry(_ context.Context, e core.LedgerEntry) (string, error) {
	if e.UUID == "" {
		return "", errors.New("ledger entry without uuid")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[e.UUID]; !ok {
		s.order = append(s.order, e.UUID)
	}
	s.rows[e.UUID] = e
	return fmt.Sprintf("mem:%d", s.position(e.UUID)), nil
}

func (s *Store) DeleteEntry(_ context.Context, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[uuid]; !ok {
		return nil
	}
	delete(s.rows, uuid)
	s.order = filterOut(s.order, uuid)
	return nil
}

// Entries returns the mirrored rows in insertion order.
func (s *Store) Entries() []core.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.LedgerEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}

func (s *Store) position(uuid string) int {
	for i, id := range s.order {
		if id == uuid {
			return i + 1
		}
	}
	return 0
}

func filterOut(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
