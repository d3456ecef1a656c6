package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Keys(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"Quit", km.Quit, []string{"q", "ctrl+c"}},
		{"Help", km.Help, []string{"?"}},
		{"Back", km.Back, []string{"esc"}},
		{"Search", km.Search, []string{"enter"}},
		{"Up", km.Up, []string{"up", "k"}},
		{"Down", km.Down, []string{"down", "j"}},
		{"Open", km.Open, []string{"enter"}},
		{"NewSearch", km.NewSearch, []string{"n"}},
		{"Update", km.Update, []string{"u"}},
		{"Refresh", km.Refresh, []string{"r"}},
		{"Acknowledge", km.Acknowledge, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Key, "binding should have help key")
		})
	}
}

func TestHelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []key.Binding{km.Quit, km.Help}, km.ShortHelp())
	assert.Len(t, km.ResultsHelp(), 4)
	assert.Equal(t, km.Update, km.StatusHelp()[0])

	full := km.FullHelp()
	assert.Len(t, full, 4)
	assert.Len(t, full[3], 2)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("k", km.Up))
	assert.True(t, Matches("u", km.Update))
	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("down", km.Up))
}
