package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) Get(_ context.Context, id string) (*domain.SearchDocument, error) {
	return nil, domain.ErrNotFound
}

func coverResult() domain.SearchResult {
	return domain.SearchResult{
		Document: domain.SearchDocument{ID: "rule:cover", Title: "Cover", Type: domain.DocumentTypeRule},
		Score:    2,
		Match:    domain.MatchToken,
	}
}

func typeText(v *View, s string) {
	for _, r := range s {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.True(t, v.InputFocused())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil)

	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.Width())
	assert.Equal(t, 40, v.Height())
	assert.Contains(t, v.View(), "rulebook")
}

func TestView_SubmitRunsSearchWithFilters(t *testing.T) {
	svc := &mockSearchService{results: []domain.SearchResult{coverResult()}}
	v := NewView(nil, nil, svc).WithContext(context.Background())
	v.SetDimensions(100, 40)

	typeText(v, "type:rule cover")
	assert.Equal(t, "type:rule cover", v.Query())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, v.InputFocused())

	msg := cmd()
	completed, ok := msg.(messages.SearchCompleted)
	require.True(t, ok)
	assert.Equal(t, "cover", svc.lastQuery)
	assert.Equal(t, []domain.DocumentType{domain.DocumentTypeRule}, svc.lastOpts.Types)

	v.Update(completed)
	require.Len(t, v.Results(), 1)
	assert.Contains(t, v.View(), "1 results")
}

func TestView_EmptyQueryIgnored(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestView_NoSearchService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetQuery("cover")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoSearchService}, msg)

	v.Update(msg)
	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}

func TestView_SearchError(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(100, 40)

	v.Update(messages.SearchCompleted{Err: errors.New("index unavailable")})

	assert.EqualError(t, v.Err(), "index unavailable")
	assert.Contains(t, v.View(), "index unavailable")
}

func TestView_EnterOnResultSelectsDocument(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.Update(messages.SearchCompleted{Results: []domain.SearchResult{coverResult()}})
	require.False(t, v.InputFocused())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	selected, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, "rule:cover", selected.Document.ID)
}

func TestView_EnterWithoutResults(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.Update(messages.SearchCompleted{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestView_NewSearchRefocusesInput(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetQuery("cover")
	v.Update(messages.SearchCompleted{Results: []domain.SearchResult{coverResult()}})

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.True(t, v.InputFocused())
	assert.Equal(t, "", v.Query())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := NewView(nil, nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Reset(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetQuery("cover")
	v.Update(messages.SearchCompleted{Results: []domain.SearchResult{coverResult()}})

	v.Reset()

	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.Nil(t, v.Err())
	assert.Nil(t, v.SelectedResult())
}
