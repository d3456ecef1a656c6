package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is an in-memory implementation of driven.MetadataStore.
type MetadataStore struct {
	faults

	mu     sync.RWMutex
	values map[string][]byte
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		values: make(map[string][]byte),
	}
}

// GetMeta decodes the value stored under key into dst.
func (s *MetadataStore) GetMeta(_ context.Context, key string, dst any) (bool, error) {
	if err := s.check("GetMeta"); err != nil {
		return false, err
	}
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: meta %s: %v", domain.ErrParse, key, err)
	}
	return true, nil
}

// PutMeta stores value under key.
func (s *MetadataStore) PutMeta(_ context.Context, key string, value any) error {
	if err := s.check("PutMeta"); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling meta %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return nil
}

// PutMetaBatch stores every value, or none when one fails to encode.
func (s *MetadataStore) PutMetaBatch(_ context.Context, values map[string]any) error {
	if err := s.check("PutMetaBatch"); err != nil {
		return err
	}
	encoded := make(map[string][]byte, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshalling meta %s: %w", key, err)
		}
		encoded[key] = raw
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, raw := range encoded {
		s.values[key] = raw
	}
	return nil
}

// DeleteMeta removes key.
func (s *MetadataStore) DeleteMeta(_ context.Context, key string) error {
	if err := s.check("DeleteMeta"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Keys returns the number of stored keys.
func (s *MetadataStore) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
