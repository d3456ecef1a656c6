package document

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func sergeant() domain.SearchDocument {
	return domain.SearchDocument{
		ID:        "member:wardens:sergeant",
		Title:     "Sergeant",
		Type:      domain.DocumentTypeMember,
		Tags:      []string{"leader", "infantry"},
		Abbr:      "SGT",
		GroupID:   "wardens",
		GroupName: "Wardens",
		Anchor:    "sergeant",
		Body:      "Leads the squad from the front.",
	}
}

func longDocument(lines int) domain.SearchDocument {
	doc := sergeant()
	parts := make([]string, lines)
	for i := range parts {
		parts[i] = "line"
	}
	doc.Body = strings.Join(parts, "\n")
	return doc
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_Empty(t *testing.T) {
	v := NewView(nil)

	assert.Nil(t, v.Document())
	assert.Nil(t, v.Init())
	assert.Contains(t, v.View(), "No document selected")
}

func TestView_RendersFields(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(100, 40)
	v.SetDocument(sergeant())

	view := v.View()
	for _, want := range []string{
		"Sergeant", "[member]", "member:wardens:sergeant", "Wardens",
		"SGT", "leader, infantry", "Leads the squad from the front.",
	} {
		assert.Contains(t, view, want)
	}
}

func TestView_EmptyBody(t *testing.T) {
	v := NewView(nil)
	doc := sergeant()
	doc.Body = "  "
	v.SetDocument(doc)

	assert.Equal(t, 0, v.LineCount())
	assert.Contains(t, v.View(), "(No content)")
}

func TestView_WrapsLongLines(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(30, 40)
	doc := sergeant()
	doc.Body = strings.Repeat("word ", 40)
	v.SetDocument(doc)

	assert.Greater(t, v.LineCount(), 1)
}

func TestView_Scrolling(t *testing.T) {
	v := NewView(nil)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	v.SetDocument(longDocument(50))
	require.Equal(t, 50, v.LineCount())

	maxOffset := 50 - (24 - 14)

	v.Update(key("up"))
	assert.Equal(t, 0, v.ScrollOffset())

	v.Update(key("down"))
	v.Update(key("j"))
	assert.Equal(t, 2, v.ScrollOffset())

	v.Update(key("k"))
	assert.Equal(t, 1, v.ScrollOffset())

	v.Update(key("pgdown"))
	assert.Equal(t, 11, v.ScrollOffset())

	v.Update(key("G"))
	assert.Equal(t, maxOffset, v.ScrollOffset())
	assert.Contains(t, v.View(), "[100%]")

	v.Update(key("down"))
	assert.Equal(t, maxOffset, v.ScrollOffset())

	v.Update(key("g"))
	assert.Equal(t, 0, v.ScrollOffset())
}

func TestView_SetDocumentResetsScroll(t *testing.T) {
	v := NewView(nil)
	v.SetDocument(longDocument(50))
	v.Update(key("G"))
	require.NotZero(t, v.ScrollOffset())

	v.SetDocument(sergeant())
	assert.Equal(t, 0, v.ScrollOffset())
}

func TestView_EscReturnsToSearch(t *testing.T) {
	v := NewView(nil)

	_, cmd := v.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSearch}, cmd())
}
