// Package memory provides an in-memory snapshot repository, used in tests and
// as a throwaway backend.
package memory

import (
	"sync"

	"github.com/amiraly/banksim/pkg/repository"
)

// Store keeps the last saved snapshot in memory.
type Store struct {
	mu    sync.Mutex
	snap  *repository.Snapshot
	saves int
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Load returns the last saved snapshot, or an empty one.
func (s *Store) Load() (*repository.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return repository.NewEmptySnapshot(), nil
	}
	return s.snap, nil
}

// Save replaces the stored snapshot.
func (s *Store) Save(snap *repository.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.saves++
	return nil
}

// Saves reports how many times Save was called. Test hook.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
