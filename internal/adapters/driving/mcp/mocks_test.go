package mcp

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	docs     map[string]domain.SearchDocument
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) Get(_ context.Context, id string) (*domain.SearchDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// mockUpdateService is a mock implementation of driving.UpdateService.
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

// mockVersionService is a mock implementation of driving.VersionService.
type mockVersionService struct {
	info domain.VersionInfo
	err  error
}

func (m *mockVersionService) GetInfo(_ context.Context) (domain.VersionInfo, error) {
	return m.info, m.err
}

func (m *mockVersionService) Acknowledge(_ context.Context) error {
	return m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats domain.IndexStats
}

func (m *mockIndexService) EnsureIndex(_ context.Context) (driven.SearchIndex, error) {
	return nil, nil
}

func (m *mockIndexService) RebuildIndex(_ context.Context) (driven.SearchIndex, error) {
	return nil, nil
}

func (m *mockIndexService) Stats() domain.IndexStats {
	return m.stats
}
