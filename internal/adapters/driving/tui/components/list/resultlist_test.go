package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Document: domain.SearchDocument{
				ID: "rule:cover", Title: "Cover", Type: domain.DocumentTypeRule,
				Body: "A model is in cover\nwhen terrain intervenes.",
			},
			Score: 3.5,
			Match: domain.MatchToken,
		},
		{
			Document: domain.SearchDocument{
				ID: "member:wardens:sergeant", Title: "Sergeant", Type: domain.DocumentTypeMember,
				GroupID: "wardens", GroupName: "Wardens", Body: "Leader of the squad.",
			},
			Score: 1.25,
			Match: domain.MatchSubstring,
		},
		{
			Document: domain.SearchDocument{
				ID: "unit:wardens", Title: "Wardens", Type: domain.DocumentTypeUnit,
				GroupID: "wardens", GroupName: "Wardens",
			},
			Score: 1,
		},
	}
}

func TestNewResultList(t *testing.T) {
	r := NewResultList(nil)

	require.NotNil(t, r)
	assert.NotNil(t, r.styles)
	assert.True(t, r.IsEmpty())
	assert.Nil(t, r.SelectedResult())
	assert.Nil(t, r.Init())
	assert.Equal(t, 80, r.Width())
	assert.Equal(t, 10, r.Height())
	assert.Equal(t, "No results", stripped(r.View()))
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(sampleResults())

	tests := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyDown}, 1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, 2},
		{tea.KeyMsg{Type: tea.KeyDown}, 2},
		{tea.KeyMsg{Type: tea.KeyUp}, 1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, 0},
		{tea.KeyMsg{Type: tea.KeyUp}, 0},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}, 2},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}, 0},
	}
	for _, tt := range tests {
		r.Update(tt.key)
		assert.Equal(t, tt.want, r.Selected(), tt.key.String())
	}
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(sampleResults())
	r.SetSelected(2)
	require.Equal(t, "unit:wardens", r.SelectedResult().Document.ID)

	r.SetSelected(99)
	assert.Equal(t, 2, r.Selected())

	r.SetResults(sampleResults()[:1])
	assert.Equal(t, 0, r.Selected())
	assert.Equal(t, 1, r.Count())
}

func TestResultList_View(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(100, 40)
	r.SetResults(sampleResults())

	view := r.View()
	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "Cover")
	assert.Contains(t, view, "[rule]")
	assert.Contains(t, view, "3.50")
	assert.Contains(t, view, "A model is in cover when terrain intervenes.")
	assert.Contains(t, view, "1.25~")
	assert.Contains(t, view, "Wardens")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "ÄÖÜ...", truncate("ÄÖÜßäöü", 6))
}

// stripped removes surrounding whitespace from a rendered view.
func stripped(s string) string {
	return strings.TrimSpace(s)
}
