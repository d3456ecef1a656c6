package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// Ensure EntityStore implements the interface.
var _ driven.EntityStore = (*EntityStore)(nil)

// EntityStore is an in-memory implementation of driven.EntityStore.
// Each table maps entity id to its JSON encoding.
type EntityStore struct {
	faults

	mu         sync.RWMutex
	units      map[string][]byte
	items      map[string][]byte
	rules      map[string][]byte
	actions    map[string][]byte
	operations map[string][]byte
	articles   map[string][]byte

	loads int
}

// NewEntityStore creates a new in-memory entity store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		units:      make(map[string][]byte),
		items:      make(map[string][]byte),
		rules:      make(map[string][]byte),
		actions:    make(map[string][]byte),
		operations: make(map[string][]byte),
		articles:   make(map[string][]byte),
	}
}

// ReplaceUnits replaces every composite unit.
func (s *EntityStore) ReplaceUnits(_ context.Context, units []domain.Unit) error {
	if err := s.check("ReplaceUnits"); err != nil {
		return err
	}
	table, err := encodeTable(units, func(u domain.Unit) string { return u.ID })
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = table
	return nil
}

// ReplaceItems replaces every universal item.
func (s *EntityStore) ReplaceItems(_ context.Context, items []domain.UniversalItem) error {
	if err := s.check("ReplaceItems"); err != nil {
		return err
	}
	table, err := encodeTable(items, func(i domain.UniversalItem) string { return i.ID })
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = table
	return nil
}

// ReplaceRules replaces every standalone rule.
func (s *EntityStore) ReplaceRules(_ context.Context, rules []domain.Rule) error {
	if err := s.check("ReplaceRules"); err != nil {
		return err
	}
	table, err := encodeTable(rules, func(r domain.Rule) string { return r.ID })
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = table
	return nil
}

// ReplaceActions replaces the action catalog.
func (s *EntityStore) ReplaceActions(_ context.Context, actions []domain.Action) error {
	if err := s.check("ReplaceActions"); err != nil {
		return err
	}
	table, err := encodeTable(actions, func(a domain.Action) string { return a.ID })
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = table
	return nil
}

// ReplaceOperations replaces every operation.
func (s *EntityStore) ReplaceOperations(_ context.Context, ops []domain.Operation) error {
	if err := s.check("ReplaceOperations"); err != nil {
		return err
	}
	table, err := encodeTable(ops, func(o domain.Operation) string { return o.ID })
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations = table
	return nil
}

// ReplaceArticles replaces every sequence step and article.
func (s *EntityStore) ReplaceArticles(_ context.Context, articles []domain.Article) error {
	if err := s.check("ReplaceArticles"); err != nil {
		return err
	}
	table, err := encodeTable(articles, func(a domain.Article) string { return a.ID })
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = table
	return nil
}

// ReplaceCore replaces rules, actions and operations together.
func (s *EntityStore) ReplaceCore(_ context.Context, bundle domain.CoreBundle) error {
	if err := s.check("ReplaceCore"); err != nil {
		return err
	}
	rules, err := encodeTable(bundle.Rules, func(r domain.Rule) string { return r.ID })
	if err != nil {
		return err
	}
	actions, err := encodeTable(bundle.Actions, func(a domain.Action) string { return a.ID })
	if err != nil {
		return err
	}
	ops, err := encodeTable(bundle.Operations, func(o domain.Operation) string { return o.ID })
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules, s.actions, s.operations = rules, actions, ops
	return nil
}

// LoadEntities returns every table ordered by id.
func (s *EntityStore) LoadEntities(_ context.Context) (*domain.EntityBatch, error) {
	if err := s.check("LoadEntities"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++

	batch := &domain.EntityBatch{}
	var err error
	if batch.Units, err = decodeTable[domain.Unit](s.units); err != nil {
		return nil, err
	}
	if batch.Items, err = decodeTable[domain.UniversalItem](s.items); err != nil {
		return nil, err
	}
	if batch.Rules, err = decodeTable[domain.Rule](s.rules); err != nil {
		return nil, err
	}
	if batch.Actions, err = decodeTable[domain.Action](s.actions); err != nil {
		return nil, err
	}
	if batch.Operations, err = decodeTable[domain.Operation](s.operations); err != nil {
		return nil, err
	}
	if batch.Articles, err = decodeTable[domain.Article](s.articles); err != nil {
		return nil, err
	}
	return batch, nil
}

// ClearEntities empties every table.
func (s *EntityStore) ClearEntities(_ context.Context) error {
	if err := s.check("ClearEntities"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = make(map[string][]byte)
	s.items = make(map[string][]byte)
	s.rules = make(map[string][]byte)
	s.actions = make(map[string][]byte)
	s.operations = make(map[string][]byte)
	s.articles = make(map[string][]byte)
	return nil
}

// Loads returns how many times LoadEntities has been called.
func (s *EntityStore) Loads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads
}

func encodeTable[T any](rows []T, id func(T) string) (map[string][]byte, error) {
	table := make(map[string][]byte, len(rows))
	for _, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("marshalling entity %s: %w", id(row), err)
		}
		table[id(row)] = raw
	}
	return table, nil
}

func decodeTable[T any](table map[string][]byte) ([]T, error) {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		var v T
		if err := json.Unmarshal(table[id], &v); err != nil {
			return nil, fmt.Errorf("decoding entity %s: %w", id, err)
		}
		out = append(out, v)
	}
	return out, nil
}
