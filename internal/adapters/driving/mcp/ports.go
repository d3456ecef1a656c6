package mcp

import (
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Updates runs update checks and forced refreshes.
	Updates driving.UpdateService

	// Versions exposes the content version record.
	Versions driving.VersionService

	// Index reports index lifecycle statistics.
	Index driving.IndexService

	// Events streams content updates while the server runs.
	Events driving.EventSubscriber

	// Locale is used by update tools when the caller passes none.
	Locale string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
