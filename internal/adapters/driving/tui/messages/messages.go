// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// DocumentSelected is sent when a search result is opened.
type DocumentSelected struct {
	Document domain.SearchDocument
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewDocument shows one document.
	ViewDocument
	// ViewStatus shows content version and index state.
	ViewStatus
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewDocument:
		return "document"
	case ViewStatus:
		return "status"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// StatusLoaded carries the version record and index statistics.
type StatusLoaded struct {
	Info  domain.VersionInfo
	Stats domain.IndexStats
	Err   error
}

// UpdateCompleted carries the result of a routine update check.
type UpdateCompleted struct {
	Result domain.SyncResult
	Err    error
}

// RefreshCompleted carries the result of a forced refresh.
type RefreshCompleted struct {
	Result domain.ForceResult
}

// ContentUpdated relays an update published while the TUI runs.
type ContentUpdated struct {
	Event domain.ContentUpdated
}
