package driven

import "github.com/custodia-labs/rulebook/internal/core/domain"

// SearchIndex is an immutable, queryable index over a document set.
// Implementations must be safe for concurrent readers.
type SearchIndex interface {
	// Search runs a query. Zero token hits fall back to a substring scan.
	Search(query string, opts domain.SearchOptions) []domain.SearchResult

	// Document returns a document by id.
	Document(id string) (domain.SearchDocument, bool)

	// Len returns the number of indexed documents.
	Len() int

	// Terms returns the number of distinct indexed terms.
	Terms() int
}

// IndexEngine builds and (de)serialises search indexes.
type IndexEngine interface {
	// Build constructs an index over docs.
	Build(docs []domain.SearchDocument) SearchIndex

	// Encode serialises an index built by this engine.
	Encode(idx SearchIndex) ([]byte, error)

	// Decode restores an index. Returns domain.ErrIncompatibleArtifact or
	// domain.ErrCorruptArtifact when the data cannot be used.
	Decode(data []byte) (SearchIndex, error)
}
