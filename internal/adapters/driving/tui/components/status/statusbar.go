// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateUpdating  State = "updating"
	StateError     State = "error"
	StateHelp      State = "help"
	StateResults   State = "results"
	StateStatus    State = "status"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	version     string
	resultCount int
	width       int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state, prefixed by the content version when known.
func (s *Bar) renderLeft() string {
	var prefix string
	if s.version != "" {
		prefix = s.styles.Muted.Render(s.version) + "  "
	}

	switch s.state {
	case StateSearching:
		return prefix + s.styles.Muted.Render("Searching...")
	case StateUpdating:
		return prefix + s.styles.Muted.Render("Updating content...")
	case StateError:
		if s.message != "" {
			return prefix + s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return prefix + s.styles.Error.Render("Error")
	case StateHelp:
		return prefix + s.styles.Normal.Render("Help")
	case StateStatus:
		if s.message != "" {
			return prefix + s.styles.Normal.Render(s.message)
		}
		return prefix + s.styles.Normal.Render("Content status")
	case StateReady, StateResults:
		if s.resultCount > 0 {
			return prefix + s.styles.Normal.Render(fmt.Sprintf("%d results", s.resultCount))
		}
		if s.message != "" {
			return prefix + s.styles.Success.Render(s.message)
		}
	}
	return prefix + s.styles.Muted.Render("Ready")
}

// renderRight renders keybinding hints for the current state.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch {
	case s.state == StateStatus:
		bindings = s.keymap.StatusHelp()
	case s.state == StateResults && s.resultCount > 0:
		bindings = s.keymap.ResultsHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetVersion sets the content version shown on the left.
func (s *Bar) SetVersion(version string) {
	s.version = version
}

// Version returns the displayed content version.
func (s *Bar) Version() string {
	return s.version
}

// SetResultCount sets the result count.
func (s *Bar) SetResultCount(count int) {
	s.resultCount = count
}

// ResultCount returns the current result count.
func (s *Bar) ResultCount() int {
	return s.resultCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to its default state. The version is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
}
