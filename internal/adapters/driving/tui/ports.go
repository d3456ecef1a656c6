// Package tui provides an interactive terminal user interface for rulebook.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Updates runs update checks and forced refreshes.
	Updates driving.UpdateService

	// Versions exposes the content version record.
	Versions driving.VersionService

	// Index reports index statistics.
	Index driving.IndexService

	// Events delivers content updates while the TUI runs.
	Events driving.EventSubscriber

	// Locale is the content locale used for updates.
	Locale string
}

// Validate ensures all required ports are set.
// Only Search is required; the status view degrades without the others.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
