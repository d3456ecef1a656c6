package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Empty(t, bar.Message())
	assert.Nil(t, bar.Init())
}

func TestNewBar_NilDependencies(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		results  int
		contains []string
	}{
		{name: "ready", state: StateReady, contains: []string{"Ready", "quit"}},
		{name: "ready with message", state: StateReady, message: "Content updated", contains: []string{"Content updated"}},
		{name: "searching", state: StateSearching, contains: []string{"Searching..."}},
		{name: "updating", state: StateUpdating, contains: []string{"Updating content..."}},
		{name: "error with message", state: StateError, message: "boom", contains: []string{"Error: boom"}},
		{name: "bare error", state: StateError, contains: []string{"Error"}},
		{name: "help", state: StateHelp, contains: []string{"Help"}},
		{name: "results", state: StateResults, results: 4, contains: []string{"4 results", "new search", "open"}},
		{name: "status", state: StateStatus, contains: []string{"Content status", "check updates", "mark seen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetResultCount(tt.results)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestBar_VersionSurvivesClear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetVersion("v3+1a2b3c4d+5e6f7a8b")
	bar.SetState(StateResults)
	bar.SetMessage("msg")
	bar.SetResultCount(3)

	assert.Contains(t, bar.View(), "v3+1a2b3c4d+5e6f7a8b")

	bar.Clear()
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.ResultCount())
	assert.Equal(t, "v3+1a2b3c4d+5e6f7a8b", bar.Version())
}

func TestBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
}
