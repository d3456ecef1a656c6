package driven

import "github.com/custodia-labs/rulebook/internal/core/domain"

// Normaliser flattens persisted entities into search documents.
// Normalise is a pure function of its input and the normaliser's context.
type Normaliser interface {
	// Normalise returns one document per distinct document id, sorted by id.
	Normalise(batch *domain.EntityBatch) []domain.SearchDocument

	// Reset drops cached lookups, used when the content locale changes.
	Reset()
}
