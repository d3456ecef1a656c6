package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func TestDefaultTheme_CoversEveryDocumentType(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	for _, dt := range domain.AllDocumentTypes() {
		_, ok := theme.Types[dt]
		assert.True(t, ok, "missing colour for %s", dt)
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	assert.NotEqual(t, theme.Primary, theme.Secondary)
	assert.NotEqual(t, theme.Success, theme.Error)
	assert.NotEqual(t, theme.Foreground, theme.Muted)
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
}

func TestStyles_TitleIsBold(t *testing.T) {
	assert.True(t, DefaultStyles().Title.GetBold())
}

func TestStyles_Badge(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Badge(domain.DocumentTypeRule), "[rule]")
	assert.Contains(t, s.Badge(domain.DocumentType("custom")), "[custom]")
}
