package httpapi

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

type mockSearchService struct {
	results  []domain.SearchResult
	docs     map[string]domain.SearchDocument
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) Get(_ context.Context, id string) (*domain.SearchDocument, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

type mockUpdateService struct {
	result  domain.SyncResult
	force   domain.ForceResult
	err     error
	locales []string
}

func (m *mockUpdateService) CheckForUpdates(_ context.Context, locale string) (domain.SyncResult, error) {
	m.locales = append(m.locales, locale)
	return m.result, m.err
}

func (m *mockUpdateService) ForceUpdateAndReindex(_ context.Context, locale string) domain.ForceResult {
	m.locales = append(m.locales, locale)
	return m.force
}

type mockVersionService struct {
	info  domain.VersionInfo
	err   error
	acked int
}

func (m *mockVersionService) GetInfo(_ context.Context) (domain.VersionInfo, error) {
	return m.info, m.err
}

func (m *mockVersionService) Acknowledge(_ context.Context) error {
	m.acked++
	return m.err
}

type mockIndexService struct {
	stats      domain.IndexStats
	rebuildErr error
	rebuilds   int
}

func (m *mockIndexService) EnsureIndex(_ context.Context) (driven.SearchIndex, error) {
	return nil, nil
}

func (m *mockIndexService) RebuildIndex(_ context.Context) (driven.SearchIndex, error) {
	m.rebuilds++
	if m.rebuildErr == nil {
		m.stats.Builds++
	}
	return nil, m.rebuildErr
}

func (m *mockIndexService) Stats() domain.IndexStats {
	return m.stats
}
