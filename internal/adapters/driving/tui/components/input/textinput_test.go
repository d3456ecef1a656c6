package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func TestNewSearchInput(t *testing.T) {
	input := NewSearchInput(styles.DefaultStyles())

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.True(t, input.Focused())
	assert.Equal(t, 50, input.Width())
}

func TestNewSearchInput_NilStyles(t *testing.T) {
	input := NewSearchInput(nil)

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
	assert.NotNil(t, input.Init())
}

func TestSearchInput_Typing(t *testing.T) {
	input := NewSearchInput(nil)

	for _, k := range "cover" {
		input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{k}})
	}
	assert.Equal(t, "cover", input.Value())

	input.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "cove", input.Value())
	assert.Contains(t, input.View(), "Search")
}

func TestSearchInput_FocusAndReset(t *testing.T) {
	input := NewSearchInput(nil)

	input.Blur()
	assert.False(t, input.Focused())
	input.Focus()
	assert.True(t, input.Focused())

	input.SetValue("some text")
	input.Reset()
	assert.Equal(t, "", input.Value())
}

func TestSearchInput_SetWidth(t *testing.T) {
	input := NewSearchInput(nil)

	input.SetWidth(100)
	assert.Equal(t, 100, input.Width())
	assert.Equal(t, 90, input.textinput.Width)

	input.SetWidth(10)
	assert.Equal(t, 10, input.Width())
	assert.Equal(t, 20, input.textinput.Width)
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantQuery string
		wantTypes []domain.DocumentType
		wantGroup string
	}{
		{name: "plain", raw: "heavy cover", wantQuery: "heavy cover"},
		{name: "empty", raw: "   ", wantQuery: ""},
		{
			name:      "type filter",
			raw:       "type:rule cover",
			wantQuery: "cover",
			wantTypes: []domain.DocumentType{domain.DocumentTypeRule},
		},
		{
			name:      "comma separated and repeated types",
			raw:       "TYPE:rule,action dash type:ploy",
			wantQuery: "dash",
			wantTypes: []domain.DocumentType{
				domain.DocumentTypeRule, domain.DocumentTypeAction, domain.DocumentTypePloy,
			},
		},
		{
			name:      "unit filter keeps case",
			raw:       "sergeant unit:Wardens",
			wantQuery: "sergeant",
			wantGroup: "Wardens",
		},
		{name: "bare prefix is text", raw: "type: unit:", wantQuery: "type: unit:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, opts := ParseQuery(tt.raw)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantTypes, opts.Types)
			assert.Equal(t, tt.wantGroup, opts.GroupID)
		})
	}
}

func TestSearchInput_Parse(t *testing.T) {
	input := NewSearchInput(nil)
	input.SetValue("type:equipment grapnel")

	query, opts := input.Parse()
	assert.Equal(t, "grapnel", query)
	assert.Equal(t, []domain.DocumentType{domain.DocumentTypeEquipment}, opts.Types)
}
