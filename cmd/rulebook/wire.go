package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/rulebook/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rulebook/internal/adapters/driven/content/filesystem"
	"github.com/custodia-labs/rulebook/internal/adapters/driven/content/github"
	"github.com/custodia-labs/rulebook/internal/adapters/driven/content/httpsource"
	"github.com/custodia-labs/rulebook/internal/adapters/driven/events"
	"github.com/custodia-labs/rulebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rulebook/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/rulebook/internal/adapters/driving/cli"
	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/core/services"
	"github.com/custodia-labs/rulebook/internal/logger"
	"github.com/custodia-labs/rulebook/internal/normalisers"
	"github.com/custodia-labs/rulebook/internal/search"
)

// stores groups the persistence ports.
type stores struct {
	meta      driven.MetadataStore
	entities  driven.EntityStore
	artifacts driven.IndexStore
	scheduler driven.SchedulerStore
	close     func() error
}

// contentPorts groups the content sources for one listing backend.
type contentPorts struct {
	data    driven.ContentSource
	content driven.ContentSource
	lister  driven.DirectoryLister
	watcher cli.Watcher
}

// Main wires adapters into core services.
type Main struct {
	// Store is the SQLite store, nil in ephemeral mode.
	Store *sqlite.Store

	// Settings is the effective configuration.
	Settings *domain.AppSettings
}

// NewMain returns an empty Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases the store.
func (m *Main) Close() error {
	if m.Store != nil {
		return m.Store.Close()
	}
	return nil
}

// Build constructs every service the commands drive.
func (m *Main) Build(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	m.Settings = settings

	locale := settings.Content.Locale
	if opts.Locale != "" {
		locale = opts.Locale
	}

	st, err := m.openStores(opts, settings)
	if err != nil {
		return nil, err
	}

	cp, err := contentFor(ctx, settings)
	if err != nil {
		return nil, errors.Join(err, st.close())
	}

	normaliser := normalisers.New(normalisers.NewContext())
	indexService := services.NewIndexService(st.entities, st.artifacts, normaliser, search.NewEngine())
	searchService := services.NewSearchService(indexService, settings.Search.Limit)
	versions := services.NewVersionTracker(st.meta)

	remote := services.NewRemoteContent(cp.data, cp.content, cp.lister, settings.Content.DefaultLocale,
		services.WithListingTTL(settings.Listing.CacheTTL))
	orchestrator := services.NewSyncOrchestrator(remote, st.meta, st.entities, indexService, normaliser, versions,
		services.SyncConfig{
			UnitsGroup:       settings.Content.UnitsGroup,
			SequenceResource: settings.Content.SequenceResource,
			ItemsResource:    settings.Content.ItemsResource,
		})

	broadcaster := events.NewBroadcaster(events.DefaultBuffer)
	orchestrator.SetEventPublisher(broadcaster)

	scheduler := services.NewScheduler(settings.Scheduler, st.scheduler, orchestrator, indexService, locale)

	logger.Debug("wired %s backend, locale %s", settings.Listing.Backend, locale)

	return &cli.Services{
		Updates:         orchestrator,
		Index:           indexService,
		Search:          searchService,
		Versions:        versions,
		Settings:        settingsService,
		Scheduler:       scheduler,
		Events:          broadcaster,
		Watcher:         cp.watcher,
		Locale:          locale,
		ServerAddr:      settings.Server.Addr,
		SchedulerConfig: settings.Scheduler,
		Close:           st.close,
	}, nil
}

// openStores opens SQLite under the data directory, or memory stores when
// running ephemeral.
func (m *Main) openStores(opts cli.Options, settings *domain.AppSettings) (stores, error) {
	if opts.Ephemeral {
		logger.Debug("using in-memory storage")
		return stores{
			meta:      memory.NewMetadataStore(),
			entities:  memory.NewEntityStore(),
			artifacts: memory.NewIndexStore(),
			scheduler: memory.NewSchedulerStore(),
			close:     func() error { return nil },
		}, nil
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = settings.Storage.DataDir
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return stores{}, fmt.Errorf("opening store: %w", err)
	}
	m.Store = store
	logger.Debug("opened store at %s", store.Path())

	return stores{
		meta:      store.MetadataStore(),
		entities:  store.EntityStore(),
		artifacts: store.IndexStore(),
		scheduler: store.SchedulerStore(),
		close:     m.Close,
	}, nil
}

// contentFor selects content sources for the configured listing backend.
func contentFor(ctx context.Context, settings *domain.AppSettings) (contentPorts, error) {
	c := settings.Content
	data := sourceFor(c.DataRoot, settings)

	switch settings.Listing.Backend {
	case domain.ListingBackendFilesystem:
		if !services.IsLocalRoot(c.ContentRoot) {
			return contentPorts{}, fmt.Errorf("%w: filesystem backend needs a local content root, got %q",
				domain.ErrInvalidInput, c.ContentRoot)
		}
		content := filesystem.New(c.ContentRoot)
		return contentPorts{
			data:    data,
			content: content,
			lister:  content,
			watcher: filesystem.NewWatcher(content.Root(), filesystem.DefaultDebounce),
		}, nil

	case domain.ListingBackendGitHub:
		if !settings.GitHub.IsConfigured() {
			return contentPorts{}, fmt.Errorf("%w: github backend needs github.owner and github.repo",
				domain.ErrInvalidInput)
		}
		client := github.NewClient(ctx, github.Config{
			Owner: settings.GitHub.Owner,
			Repo:  settings.GitHub.Repo,
			Ref:   settings.GitHub.Ref,
			Root:  settings.GitHub.Path,
			Token: settings.GitHub.Token,
		})
		return contentPorts{
			data:    data,
			content: sourceFor(c.ContentRoot, settings),
			lister:  client,
		}, nil

	case domain.ListingBackendHTTP:
	}

	content := httpsource.New(c.ContentRoot, httpsource.WithTimeout(c.Timeout))
	return contentPorts{data: data, content: content, lister: content}, nil
}

// sourceFor reads root from disk when it is local and over HTTP otherwise.
func sourceFor(root string, settings *domain.AppSettings) driven.ContentSource {
	if services.IsLocalRoot(root) {
		return filesystem.New(root)
	}
	return httpsource.New(root, httpsource.WithTimeout(settings.Content.Timeout))
}
