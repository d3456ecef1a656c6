package cli

import (
	"context"
	"sync"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
	queries  []string
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.queries = append(m.queries, query)
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) Get(_ context.Context, id string) (*domain.SearchDocument, error) {
	for _, r := range m.results {
		if r.Document.ID == id {
			doc := r.Document
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockUpdateService struct {
	mu      sync.Mutex
	result  domain.SyncResult
	err     error
	force   domain.ForceResult
	locales []string
}

func (m *mockUpdateService) CheckForUpdates(_ context.Context, locale string) (domain.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locales = append(m.locales, locale)
	return m.result, m.err
}

func (m *mockUpdateService) ForceUpdateAndReindex(_ context.Context, locale string) domain.ForceResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locales = append(m.locales, locale)
	return m.force
}

func (m *mockUpdateService) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.locales...)
}

type mockIndexService struct {
	stats      domain.IndexStats
	ensureErr  error
	rebuildErr error
	rebuilds   int
}

func (m *mockIndexService) EnsureIndex(context.Context) (driven.SearchIndex, error) {
	return nil, m.ensureErr
}

func (m *mockIndexService) RebuildIndex(context.Context) (driven.SearchIndex, error) {
	m.rebuilds++
	return nil, m.rebuildErr
}

func (m *mockIndexService) Stats() domain.IndexStats {
	return m.stats
}

type mockVersionService struct {
	info  domain.VersionInfo
	err   error
	acked bool
}

func (m *mockVersionService) GetInfo(context.Context) (domain.VersionInfo, error) {
	return m.info, m.err
}

func (m *mockVersionService) Acknowledge(context.Context) error {
	m.acked = true
	m.info.UnseenChanges = 0
	return nil
}

// mockWatcher fires onChange a fixed number of times, then waits for ctx.
type mockWatcher struct {
	changes int
	err     error
}

func (m *mockWatcher) Watch(ctx context.Context, onChange func(context.Context)) error {
	if m.err != nil {
		return m.err
	}
	for range m.changes {
		onChange(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}
