package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataRoot         = "content.data_root"
	keyContentRoot      = "content.content_root"
	keyDefaultLocale    = "content.default_locale"
	keyLocale           = "content.locale"
	keyUnitsGroup       = "content.units_group"
	keySequenceResource = "content.sequence_resource"
	keyItemsResource    = "content.items_resource"
	keyTimeout          = "content.timeout"
	keyListingBackend   = "listing.backend"
	keyListingTTL       = "listing.cache_ttl"
	keyGitHubOwner      = "github.owner"
	keyGitHubRepo       = "github.repo"
	keyGitHubRef        = "github.ref"
	keyGitHubPath       = "github.path"
	keyGitHubToken      = "github.token"
	keyDataDir          = "storage.data_dir"
	keySearchLimit      = "search.limit"
	keyServerAddr       = "server.addr"
	keySchedulerEnabled = "scheduler.enabled"
)

// schedulerTaskKeys maps task IDs to their TOML table names.
var schedulerTaskKeys = map[string]string{
	domain.TaskIDUpdateCheck: "update_check",
	domain.TaskIDIndexWarmup: "index_warmup",
}

// SettingsService maps the configuration file onto domain.AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Content: domain.ContentSettings{
			DataRoot:         s.getString(keyDataRoot, d.Content.DataRoot),
			ContentRoot:      s.getString(keyContentRoot, d.Content.ContentRoot),
			DefaultLocale:    s.getString(keyDefaultLocale, d.Content.DefaultLocale),
			Locale:           s.getString(keyLocale, d.Content.Locale),
			UnitsGroup:       s.getString(keyUnitsGroup, d.Content.UnitsGroup),
			SequenceResource: s.getString(keySequenceResource, d.Content.SequenceResource),
			ItemsResource:    s.getString(keyItemsResource, d.Content.ItemsResource),
			Timeout:          s.getDuration(keyTimeout, d.Content.Timeout),
		},
		Listing: domain.ListingSettings{
			Backend:  s.getListingBackend(d.Listing.Backend),
			CacheTTL: s.getDuration(keyListingTTL, d.Listing.CacheTTL),
		},
		GitHub: domain.GitHubSettings{
			Owner: s.configStore.GetString(keyGitHubOwner),
			Repo:  s.configStore.GetString(keyGitHubRepo),
			Ref:   s.getString(keyGitHubRef, d.GitHub.Ref),
			Path:  s.getString(keyGitHubPath, d.GitHub.Path),
			Token: s.configStore.GetString(keyGitHubToken),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyDataDir),
		},
		Search: domain.SearchSettings{
			Limit: s.getInt(keySearchLimit, d.Search.Limit),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
		Scheduler: s.GetSchedulerConfig(),
	}

	// A local content root implies the filesystem backend.
	if IsLocalRoot(settings.Content.ContentRoot) {
		settings.Listing.Backend = domain.ListingBackendFilesystem
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDataRoot, settings.Content.DataRoot},
		{keyContentRoot, settings.Content.ContentRoot},
		{keyDefaultLocale, settings.Content.DefaultLocale},
		{keyLocale, settings.Content.Locale},
		{keyUnitsGroup, settings.Content.UnitsGroup},
		{keySequenceResource, settings.Content.SequenceResource},
		{keyItemsResource, settings.Content.ItemsResource},
		{keyTimeout, settings.Content.Timeout.String()},
		{keyListingBackend, settings.Listing.Backend.String()},
		{keyListingTTL, settings.Listing.CacheTTL.String()},
		{keyGitHubOwner, settings.GitHub.Owner},
		{keyGitHubRepo, settings.GitHub.Repo},
		{keyGitHubRef, settings.GitHub.Ref},
		{keyGitHubPath, settings.GitHub.Path},
		{keySearchLimit, settings.Search.Limit},
		{keyServerAddr, settings.Server.Addr},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
	}
	if settings.GitHub.Token != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyGitHubToken, settings.GitHub.Token})
	}
	if settings.Storage.DataDir != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyDataDir, settings.Storage.DataDir})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	for taskID, name := range schedulerTaskKeys {
		cfg := settings.Scheduler.GetTaskConfig(taskID)
		prefix := "scheduler." + name + "."
		if err := s.configStore.Set(prefix+"enabled", cfg.Enabled); err != nil {
			return fmt.Errorf("save scheduler %s: %w", name, err)
		}
		if err := s.configStore.Set(prefix+"interval", cfg.Interval.String()); err != nil {
			return fmt.Errorf("save scheduler %s: %w", name, err)
		}
	}
	return s.configStore.Save()
}

// SetLocale updates the requested content locale.
func (s *SettingsService) SetLocale(locale string) error {
	locale = strings.TrimSpace(locale)
	if locale == "" || strings.ContainsAny(locale, "/\\ ") {
		return fmt.Errorf("%w: locale %q", domain.ErrInvalidInput, locale)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Content.Locale = locale
	return s.Save(settings)
}

// SetListingBackend selects the directory listing backend.
func (s *SettingsService) SetListingBackend(backend domain.ListingBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: listing backend %q", domain.ErrInvalidInput, backend)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Listing.Backend = backend
	return s.Save(settings)
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	for name, root := range map[string]string{"data_root": settings.Content.DataRoot, "content_root": settings.Content.ContentRoot} {
		if IsLocalRoot(root) {
			continue
		}
		u, err := url.Parse(root)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: content.%s must be an http(s) URL or a local path: %q", domain.ErrInvalidInput, name, root)
		}
	}
	if settings.Content.DefaultLocale == "" {
		return fmt.Errorf("%w: content.default_locale is empty", domain.ErrInvalidInput)
	}
	if settings.Listing.Backend == domain.ListingBackendGitHub && !settings.GitHub.IsConfigured() {
		return fmt.Errorf("%w: listing backend %q requires github.owner and github.repo",
			domain.ErrInvalidInput, settings.Listing.Backend.Description())
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	for taskID, configKey := range schedulerTaskKeys {
		prefix := "scheduler." + configKey + "."
		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}
		if d := s.configStore.GetDuration(prefix + "interval"); d > 0 {
			taskCfg.Interval = d
		}
		defaults.TaskConfigs[taskID] = taskCfg
	}
	return defaults
}

// IsLocalRoot reports whether root names a local directory rather than a URL.
func IsLocalRoot(root string) bool {
	return strings.HasPrefix(root, "file://") || strings.HasPrefix(root, "/") || strings.HasPrefix(root, ".")
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if d := s.configStore.GetDuration(key); d > 0 {
		return d
	}
	return defaultVal
}

func (s *SettingsService) getListingBackend(defaultVal domain.ListingBackend) domain.ListingBackend {
	backend := domain.ListingBackend(s.configStore.GetString(keyListingBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
