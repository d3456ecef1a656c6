package driving

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// IndexService owns the search index lifecycle.
// Concurrent callers of EnsureIndex or RebuildIndex share one underlying operation.
type IndexService interface {
	// EnsureIndex returns the current index, loading the persisted artifact
	// or building a fresh index when none is installed.
	EnsureIndex(ctx context.Context) (driven.SearchIndex, error)

	// RebuildIndex normalises every persisted entity, installs a fresh index
	// and persists it.
	RebuildIndex(ctx context.Context) (driven.SearchIndex, error)

	// Stats reports the lifecycle state and counters.
	Stats() domain.IndexStats
}
