// Package status provides the content status view for the TUI.
package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
)

// Errors reported when an action has no backing service.
var (
	ErrNoVersionService = errors.New("version service not available")
	ErrNoUpdateService  = errors.New("update service not available")
)

// View shows the content version, update history and index state, and
// runs update checks on request.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	versions driving.VersionService
	index    driving.IndexService
	updates  driving.UpdateService
	locale   string
	ctx      context.Context

	info    domain.VersionInfo
	stats   domain.IndexStats
	loaded  bool
	busy    bool
	message string
	err     error
	width   int
	height  int
}

// NewView creates a new status view. Any service may be nil; the related
// section or action is then unavailable.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	versions driving.VersionService,
	index driving.IndexService,
	updates driving.UpdateService,
	locale string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:   s,
		keymap:   km,
		versions: versions,
		index:    index,
		updates:  updates,
		locale:   locale,
		ctx:      context.Background(),
		width:    80,
		height:   24,
	}
}

// WithContext sets the context used by service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the current status.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command that reads the version record and index stats.
func (v *View) Load() tea.Cmd {
	versions, index, ctx := v.versions, v.index, v.ctx
	return func() tea.Msg {
		return loadStatus(ctx, versions, index)
	}
}

func loadStatus(ctx context.Context, versions driving.VersionService, index driving.IndexService) messages.StatusLoaded {
	var msg messages.StatusLoaded
	if index != nil {
		msg.Stats = index.Stats()
	}
	if versions == nil {
		msg.Err = ErrNoVersionService
		return msg
	}
	msg.Info, msg.Err = versions.GetInfo(ctx)
	return msg
}

// Update handles messages for the status view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.StatusLoaded:
		v.loaded = true
		v.err = msg.Err
		if msg.Err == nil {
			v.info = msg.Info
		}
		v.stats = msg.Stats
		return v, nil

	case messages.UpdateCompleted:
		v.busy = false
		switch {
		case msg.Err != nil:
			v.err = msg.Err
			v.message = ""
		case msg.Result.Updated:
			v.err = nil
			v.message = "Content updated to " + msg.Result.Version
		default:
			v.err = nil
			v.message = "Content is up to date"
		}
		if msg.Result.Warning != "" {
			v.message += " (warning: " + msg.Result.Warning + ")"
		}
		return v, v.Load()

	case messages.RefreshCompleted:
		v.busy = false
		if msg.Result.OK {
			v.err = nil
			v.message = "Refreshed to " + msg.Result.Version
		} else {
			v.err = errors.New(msg.Result.Error)
			v.message = ""
		}
		return v, v.Load()

	case messages.ContentUpdated:
		v.message = "Content updated to " + msg.Event.Version
		return v, v.Load()
	}
	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case v.busy:
		return v, nil
	case keymap.Matches(keyStr, v.keymap.Update):
		return v.startUpdate(false)
	case keymap.Matches(keyStr, v.keymap.Refresh):
		return v.startUpdate(true)
	case keymap.Matches(keyStr, v.keymap.Acknowledge):
		return v, v.acknowledge()
	}
	return v, nil
}

// startUpdate runs a routine check or a forced refresh in the background.
func (v *View) startUpdate(force bool) (*View, tea.Cmd) {
	if v.updates == nil {
		v.err = ErrNoUpdateService
		return v, nil
	}

	v.busy = true
	v.err = nil
	v.message = ""
	updates, ctx, locale := v.updates, v.ctx, v.locale
	if force {
		v.message = "Refreshing content..."
		return v, func() tea.Msg {
			return messages.RefreshCompleted{Result: updates.ForceUpdateAndReindex(ctx, locale)}
		}
	}
	v.message = "Checking for updates..."
	return v, func() tea.Msg {
		result, err := updates.CheckForUpdates(ctx, locale)
		return messages.UpdateCompleted{Result: result, Err: err}
	}
}

// acknowledge marks the current version as seen and reloads.
func (v *View) acknowledge() tea.Cmd {
	versions, index, ctx := v.versions, v.index, v.ctx
	return func() tea.Msg {
		if versions == nil {
			return messages.StatusLoaded{Err: ErrNoVersionService}
		}
		if err := versions.Acknowledge(ctx); err != nil {
			return messages.StatusLoaded{Err: err}
		}
		return loadStatus(ctx, versions, index)
	}
}

// View renders the status view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Content status"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	if !v.loaded {
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	version := v.info.CurrentVersion
	if version == "" {
		version = "none"
	}
	v.renderField(&b, "Version", version)
	if v.locale != "" {
		v.renderField(&b, "Locale", v.locale)
	}
	if v.info.Commit != "" {
		v.renderField(&b, "Commit", v.info.Commit)
	}
	v.renderField(&b, "Last update", displayTime(v.info.LastUpdateTime))
	v.renderField(&b, "Last check", displayTime(v.info.LastCheckTime))
	if v.info.UnseenChanges > 0 {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%-14s", "Unseen:")))
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("%d", v.info.UnseenChanges)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(v.styles.Subtitle.Render("Index"))
	b.WriteString("\n")
	v.renderField(&b, "State", string(v.stats.State))
	v.renderField(&b, "Documents", fmt.Sprintf("%d", v.stats.Documents))
	v.renderField(&b, "Terms", fmt.Sprintf("%d", v.stats.Terms))
	b.WriteString("\n")

	if len(v.info.History) > 0 {
		b.WriteString(v.styles.Subtitle.Render("Previous versions"))
		b.WriteString("\n")
		limit := min(len(v.info.History), max(v.height-22, 1))
		for _, h := range v.info.History[:limit] {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s  %s",
				h.Timestamp.Local().Format(time.DateTime), h.Version)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	} else if v.message != "" {
		b.WriteString(v.styles.Success.Render(v.message))
		b.WriteString("\n\n")
	}

	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderField(b *strings.Builder, label, value string) {
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%-14s", label+":")))
	b.WriteString(v.styles.Normal.Render(value))
	b.WriteString("\n")
}

func (v *View) renderHelp() string {
	bindings := v.keymap.StatusHelp()
	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return v.styles.Help.Render(strings.Join(hints, "  "))
}

func displayTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Info returns the last loaded version information.
func (v *View) Info() domain.VersionInfo {
	return v.info
}

// Stats returns the last loaded index statistics.
func (v *View) Stats() domain.IndexStats {
	return v.stats
}

// Busy reports whether an update is in progress.
func (v *View) Busy() bool {
	return v.busy
}

// Message returns the last action message.
func (v *View) Message() string {
	return v.message
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
