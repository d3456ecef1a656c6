package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results. Zero means the service default.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// Types filters results to specific document types.
	Types []DocumentType

	// GroupID filters results to documents owned by one unit.
	GroupID string
}

// MatchKind records how a result matched the query.
type MatchKind string

// Match kinds.
const (
	MatchToken     MatchKind = "token"
	MatchSubstring MatchKind = "substring"
)

// SearchResult represents a single search hit.
type SearchResult struct {
	// Document is the matched document.
	Document SearchDocument `json:"document"`

	// Score is the relevance score. Substring matches score zero.
	Score float64 `json:"score"`

	// Match records whether the token index or the substring scan found it.
	Match MatchKind `json:"match"`
}

// IndexState is a step of the search index lifecycle.
type IndexState string

// Index lifecycle states.
const (
	IndexUninitialized IndexState = "uninitialized"
	IndexLoading       IndexState = "loading"
	IndexReady         IndexState = "ready"
)

// IndexStats summarises the index lifecycle for display surfaces.
type IndexStats struct {
	State     IndexState `json:"state"`
	Documents int        `json:"documents"`
	Terms     int        `json:"terms"`
	Builds    int64      `json:"builds"`
	Loads     int64      `json:"loads"`
}
