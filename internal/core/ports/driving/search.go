package driving

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search queries the index, warming it first if needed.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Get returns one document by id.
	Get(ctx context.Context, id string) (*domain.SearchDocument, error)
}
