// Package search implements the in-memory full-text index over normalised
// search documents.
//
// Documents are tokenised per field into an inverted index with a sorted
// term dictionary. Queries match each token exactly, by prefix, or within a
// bounded edit distance, and fall back to a case-insensitive substring scan
// when no token matches. An Index is immutable once built and is safe for
// concurrent readers.
//
// Indexes serialise to a checksummed artifact (see Engine.Encode) that
// decodes to an index answering every query identically.
package search
