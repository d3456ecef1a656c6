package driving

import "github.com/custodia-labs/rulebook/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults filled in.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLocale updates the requested content locale.
	SetLocale(locale string) error

	// SetListingBackend selects the directory listing backend.
	SetListingBackend(backend domain.ListingBackend) error

	// Validate checks that the current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
