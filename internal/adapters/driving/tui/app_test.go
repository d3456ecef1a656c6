package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func newTestApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	if ports == nil {
		ports = &Ports{Search: &mockSearchService{}}
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.WithContext(context.Background())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app
}

func TestNewApp_RequiresSearch(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestApp_StartsOnMenu(t *testing.T) {
	app, err := NewApp(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.Equal(t, messages.ViewMenu, app.CurrentView())

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "rulebook")
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, nil)

	assert.NotNil(t, app.Init())
}

func TestApp_ViewChanged(t *testing.T) {
	tests := []struct {
		view     messages.ViewType
		contains string
	}{
		{messages.ViewSearch, "Search:"},
		{messages.ViewStatus, "Content status"},
		{messages.ViewHelp, "Help"},
		{messages.ViewDocument, "No document selected"},
		{messages.ViewMenu, "Offline rules reference"},
	}

	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			app := newTestApp(t, nil)

			app.Update(messages.ViewChanged{View: tt.view})

			assert.Equal(t, tt.view, app.CurrentView())
			assert.Contains(t, app.View(), tt.contains)
		})
	}
}

func TestApp_SearchToDocumentAndBack(t *testing.T) {
	results := []domain.SearchResult{{
		Document: domain.SearchDocument{ID: "rule:cover", Title: "Cover", Type: domain.DocumentTypeRule, Body: "Obscured."},
		Score:    1,
	}}
	app := newTestApp(t, &Ports{Search: &mockSearchService{results: results}})

	app.Update(messages.ViewChanged{View: messages.ViewSearch})
	app.Update(messages.SearchCompleted{Query: "cover", Results: results})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())
	require.Equal(t, messages.ViewDocument, app.CurrentView())
	assert.Contains(t, app.View(), "Obscured.")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Contains(t, app.View(), "Cover", "results survive the round trip")
}

func TestApp_StatusLoadedUpdatesMenu(t *testing.T) {
	app := newTestApp(t, nil)

	app.Update(messages.StatusLoaded{Info: domain.VersionInfo{CurrentVersion: "v7", UnseenChanges: 1}})

	view := app.View()
	assert.Contains(t, view, "v7")
	assert.Contains(t, view, "1 unseen content update(s)")
}

func TestApp_ContentUpdatedKeepsListening(t *testing.T) {
	events := newMockEvents()
	app := newTestApp(t, &Ports{
		Search:   &mockSearchService{},
		Versions: &mockVersionService{},
		Events:   events,
	})
	app.Init()

	events.ch <- domain.ContentUpdated{Version: "v8"}
	msg := app.waitForEvent()()
	require.Equal(t, messages.ContentUpdated{Event: domain.ContentUpdated{Version: "v8"}}, msg)

	_, cmd := app.Update(msg)
	assert.NotNil(t, cmd)

	app.Close()
	assert.True(t, events.unsubscribed)
}

func TestApp_WaitForEventWithoutSource(t *testing.T) {
	app := newTestApp(t, nil)
	app.Init()

	assert.Nil(t, app.waitForEvent())
}

func TestApp_HelpEscReturnsToMenu(t *testing.T) {
	app := newTestApp(t, nil)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, nil)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, nil)
	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	app.Update(messages.ErrorOccurred{Err: assert.AnError})

	assert.ErrorIs(t, app.Err(), assert.AnError)
}
