package search

import (
	"fmt"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// Engine adapts the package functions to the driven.IndexEngine port.
type Engine struct{}

// NewEngine creates an index engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Build constructs an index over docs.
func (e *Engine) Build(docs []domain.SearchDocument) driven.SearchIndex {
	return Build(docs)
}

// Encode serialises an index built by this engine.
func (e *Engine) Encode(idx driven.SearchIndex) ([]byte, error) {
	own, ok := idx.(*Index)
	if !ok {
		return nil, fmt.Errorf("%w: index type %T", domain.ErrInvalidInput, idx)
	}
	return Encode(own)
}

// Decode restores an index from an artifact.
func (e *Engine) Decode(data []byte) (driven.SearchIndex, error) {
	idx, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

var (
	_ driven.IndexEngine = (*Engine)(nil)
	_ driven.SearchIndex = (*Index)(nil)
)
