package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
type IndexStore struct {
	faults

	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{}
}

// SaveArtifact replaces the stored artifact.
func (s *IndexStore) SaveArtifact(_ context.Context, data []byte) error {
	if err := s.check("SaveArtifact"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.saves++
	return nil
}

// LoadArtifact returns a copy of the stored artifact.
func (s *IndexStore) LoadArtifact(_ context.Context) ([]byte, bool, error) {
	if err := s.check("LoadArtifact"); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

// Saves returns how many artifacts have been saved.
func (s *IndexStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
