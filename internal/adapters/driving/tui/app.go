package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/views/document"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/views/status"
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView     *menu.View
	searchView   *search.View
	documentView *document.View
	statusView   *status.View

	// events receives content updates; nil without an event source.
	events      <-chan domain.ContentUpdated
	unsubscribe func()

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		searchView:   search.NewView(s, km, ports.Search),
		documentView: document.NewView(s),
		statusView:   status.NewView(s, km, ports.Versions, ports.Index, ports.Updates, ports.Locale),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.statusView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	if a.ports.Events != nil && a.events == nil {
		a.events, a.unsubscribe = a.ports.Events.Subscribe()
	}
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("rulebook"),
		a.statusView.Load(),
		a.waitForEvent(),
	)
}

// waitForEvent returns a command that blocks until the next content update.
// It returns nil when no event source is attached.
func (a *App) waitForEvent() tea.Cmd {
	events := a.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return messages.ContentUpdated{Event: event}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		previous := a.currentView
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			// Returning from a document keeps the previous results.
			if previous == messages.ViewDocument {
				return a, nil
			}
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewStatus:
			return a, a.statusView.Load()
		case messages.ViewMenu, messages.ViewDocument, messages.ViewHelp:
		}
		return a, nil

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.DocumentSelected:
		a.documentView.SetDocument(msg.Document)
		a.currentView = messages.ViewDocument
		return a, nil

	case messages.StatusLoaded:
		if msg.Err == nil {
			a.menuView.SetStatus(msg.Info.CurrentVersion, msg.Info.UnseenChanges)
			a.searchView.SetVersion(msg.Info.CurrentVersion)
		}
		a.statusView, cmd = a.statusView.Update(msg)
		return a, cmd

	case messages.UpdateCompleted, messages.RefreshCompleted:
		a.statusView, cmd = a.statusView.Update(msg)
		return a, cmd

	case messages.ContentUpdated:
		a.statusView, cmd = a.statusView.Update(msg)
		return a, tea.Batch(cmd, a.waitForEvent())

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocument:
		a.documentView, cmd = a.documentView.Update(msg)
	case messages.ViewStatus:
		a.statusView, cmd = a.statusView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// handleKeyMsg routes key presses to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocument:
		a.documentView, cmd = a.documentView.Update(msg)
	case messages.ViewStatus:
		a.statusView, cmd = a.statusView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocument:
		return a.documentView.View()
	case messages.ViewStatus:
		return a.statusView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Search:
  (type)      Enter search query
  type:rule   Filter by document type (comma separated)
  unit:id     Filter by unit
  enter       Submit search

Results:
  j/k, ↑/↓    Navigate results
  enter       Open document
  n           New search

Content status:
  u           Check for updates
  r           Force refresh and reindex
  a           Mark current version as seen

[esc] back to menu`
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Close ends the event subscription.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.documentView.SetDimensions(width, height)
	a.statusView.SetDimensions(width, height)
}
