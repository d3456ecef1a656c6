// Package mcp provides an MCP (Model Context Protocol) server adapter for rulebook.
// It lets AI assistants search the offline dataset and trigger update checks.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
