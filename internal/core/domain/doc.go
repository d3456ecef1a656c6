// Package domain defines the core business entities for rulebook.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Manifest: the top-level descriptor of a content release
//   - Unit, Rule, Action, Operation, UniversalItem, Article: game content entities
//   - Text: free text that upstream content ships as a string, list or keyed object
//   - SearchDocument: the normalised shape consumed by the search index
//   - VersionRecord: the composite content version and its history
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
