package tui

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

type mockSearchService struct {
	results []domain.SearchResult
}

func (m *mockSearchService) Search(context.Context, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return m.results, nil
}

func (m *mockSearchService) Get(context.Context, string) (*domain.SearchDocument, error) {
	return nil, domain.ErrNotFound
}

type mockVersionService struct {
	info domain.VersionInfo
}

func (m *mockVersionService) GetInfo(context.Context) (domain.VersionInfo, error) {
	return m.info, nil
}

func (m *mockVersionService) Acknowledge(context.Context) error {
	return nil
}

type mockEvents struct {
	ch           chan domain.ContentUpdated
	unsubscribed bool
}

func newMockEvents() *mockEvents {
	return &mockEvents{ch: make(chan domain.ContentUpdated, 1)}
}

func (m *mockEvents) Subscribe() (<-chan domain.ContentUpdated, func()) {
	return m.ch, func() {
		m.unsubscribed = true
	}
}
