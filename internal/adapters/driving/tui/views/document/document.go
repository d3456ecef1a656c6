// Package document provides the single document view for the TUI.
package document

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// View shows the fields and scrollable body of one search document.
type View struct {
	styles *styles.Styles

	document     *domain.SearchDocument
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new document view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		width:  80,
		height: 24,
	}
}

// SetDocument replaces the displayed document and scrolls to the top.
func (v *View) SetDocument(doc domain.SearchDocument) {
	v.document = &doc
	v.scrollOffset = 0
	v.wrapBody()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

// wrapBody word-wraps the document body to the view width.
func (v *View) wrapBody() {
	v.lines = nil
	if v.document == nil || strings.TrimSpace(v.document.Body) == "" {
		return
	}

	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}
	wrapped := lipgloss.NewStyle().Width(contentWidth).Render(v.document.Body)
	for _, line := range strings.Split(wrapped, "\n") {
		v.lines = append(v.lines, strings.TrimRight(line, " "))
	}
}

// visibleLines returns the number of body lines that fit below the header.
func (v *View) visibleLines() int {
	// title, separator, field block, help
	reserved := 14
	return max(v.height-reserved, 1)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the document.
func (v *View) View() string {
	var b strings.Builder

	if v.document == nil {
		b.WriteString(v.styles.Muted.Render("No document selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	doc := v.document
	title := doc.Title
	if title == "" {
		title = doc.ID
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString(" ")
	b.WriteString(v.styles.Badge(doc.Type))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	v.renderField(&b, "ID", doc.ID)
	if doc.GroupName != "" {
		v.renderField(&b, "Unit", doc.GroupName)
	}
	v.renderField(&b, "Abbreviation", doc.Abbr)
	v.renderField(&b, "Anchor", doc.Anchor)
	if len(doc.Tags) > 0 {
		v.renderField(&b, "Tags", strings.Join(doc.Tags, ", "))
	}
	b.WriteString("\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No content)"))
	} else {
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(v.lines))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.styles.Normal.Render(v.lines[i]))
			b.WriteString("\n")
		}
		if len(v.lines) > visible {
			percentage := 0
			if v.maxScrollOffset() > 0 {
				percentage = v.scrollOffset * 100 / v.maxScrollOffset()
			}
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
				percentage, v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderField writes one labelled field, skipping empty values.
func (v *View) renderField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%-14s", label+":")))
	b.WriteString(v.styles.Normal.Render(value))
	b.WriteString("\n")
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions and rewraps the body.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrapBody()
}

// Document returns the displayed document, or nil.
func (v *View) Document() *domain.SearchDocument {
	return v.document
}

// ScrollOffset returns the index of the first visible body line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// LineCount returns the number of wrapped body lines.
func (v *View) LineCount() int {
	return len(v.lines)
}
