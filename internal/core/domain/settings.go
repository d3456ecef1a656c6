package domain

import "time"

const unknownDescription = "Unknown"

// ListingBackend selects how group directories are listed.
type ListingBackend string

// Available listing backends.
const (
	// ListingBackendHTTP lists groups through a JSON endpoint beside the content.
	ListingBackendHTTP ListingBackend = "http"

	// ListingBackendGitHub lists groups through the GitHub contents API.
	ListingBackendGitHub ListingBackend = "github"

	// ListingBackendFilesystem lists groups from a local mirror.
	ListingBackendFilesystem ListingBackend = "filesystem"
)

// IsValid returns true if the backend is recognised.
func (b ListingBackend) IsValid() bool {
	switch b {
	case ListingBackendHTTP, ListingBackendGitHub, ListingBackendFilesystem:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b ListingBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b ListingBackend) Description() string {
	switch b {
	case ListingBackendHTTP:
		return "HTTP (JSON directory index)"
	case ListingBackendGitHub:
		return "GitHub (contents API)"
	case ListingBackendFilesystem:
		return "Filesystem (local mirror)"
	default:
		return unknownDescription
	}
}

// ContentSettings locates the remote content release.
type ContentSettings struct {
	// DataRoot is where manifest.json lives.
	DataRoot string

	// ContentRoot is the parent of the per-locale directories.
	ContentRoot string

	// DefaultLocale is used when a resource is absent for the requested locale.
	DefaultLocale string

	// Locale is the requested locale.
	Locale string

	// UnitsGroup is the listed directory holding one file per unit.
	UnitsGroup string

	// SequenceResource is the file holding sequence steps and articles.
	SequenceResource string

	// ItemsResource is the file holding universal items.
	ItemsResource string

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// ListingSettings configures directory listing.
type ListingSettings struct {
	Backend  ListingBackend
	CacheTTL time.Duration
}

// GitHubSettings configures the GitHub listing backend.
type GitHubSettings struct {
	Owner string
	Repo  string
	Ref   string

	// Path is the repository path of the content root.
	Path string

	// Token is optional. Unauthenticated requests get a lower rate limit.
	Token string
}

// IsConfigured returns true if the repository is set.
func (g GitHubSettings) IsConfigured() bool {
	return g.Owner != "" && g.Repo != ""
}

// StorageSettings locates the local database.
type StorageSettings struct {
	DataDir string
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Limit is the default number of results.
	Limit int
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Content   ContentSettings
	Listing   ListingSettings
	GitHub    GitHubSettings
	Storage   StorageSettings
	Search    SearchSettings
	Server    ServerSettings
	Scheduler SchedulerConfig
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Content: ContentSettings{
			DataRoot:         "https://raw.githubusercontent.com/rulebook-data/content/main/data",
			ContentRoot:      "https://raw.githubusercontent.com/rulebook-data/content/main/content",
			DefaultLocale:    "en",
			Locale:           "en",
			UnitsGroup:       "units",
			SequenceResource: "sequence.json",
			ItemsResource:    "equipment.json",
			Timeout:          30 * time.Second,
		},
		Listing: ListingSettings{
			Backend:  ListingBackendHTTP,
			CacheTTL: time.Hour,
		},
		GitHub: GitHubSettings{
			Ref:  "main",
			Path: "content",
		},
		Search: SearchSettings{
			Limit: 20,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8787",
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}

// AllListingBackends returns all listing backends.
func AllListingBackends() []ListingBackend {
	return []ListingBackend{
		ListingBackendHTTP,
		ListingBackendGitHub,
		ListingBackendFilesystem,
	}
}
