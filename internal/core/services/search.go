package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
	"github.com/custodia-labs/rulebook/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const defaultSearchLimit = 20

// SearchService answers queries against the index, warming it on first use.
type SearchService struct {
	index        driving.IndexService
	defaultLimit int
}

// NewSearchService creates a search service. A non-positive defaultLimit uses 20.
func NewSearchService(index driving.IndexService, defaultLimit int) *SearchService {
	if defaultLimit <= 0 {
		defaultLimit = defaultSearchLimit
	}
	return &SearchService{index: index, defaultLimit: defaultLimit}
}

// Search queries the index.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = s.defaultLimit
	}
	for _, t := range opts.Types {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: document type %q", domain.ErrInvalidInput, t)
		}
	}

	idx, err := s.index.EnsureIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	results := idx.Search(query, opts)
	logger.Debug("%d results", len(results))
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// Get returns one document by id.
func (s *SearchService) Get(ctx context.Context, id string) (*domain.SearchDocument, error) {
	idx, err := s.index.EnsureIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	doc, ok := idx.Document(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}
