// Package cli provides the rulebook command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
	"github.com/custodia-labs/rulebook/internal/logger"
)

// version is the binary version, set at build time.
var version = "dev"

// Watcher reports local content changes.
type Watcher interface {
	Watch(ctx context.Context, onChange func(context.Context)) error
}

// Options carries the global flags to the service factory.
type Options struct {
	ConfigDir string
	DataDir   string
	Locale    string
	Ephemeral bool
}

// Services bundles everything the commands drive.
type Services struct {
	Updates   driving.UpdateService
	Index     driving.IndexService
	Search    driving.SearchService
	Versions  driving.VersionService
	Settings  driving.SettingsService
	Scheduler driving.Scheduler
	Events    driving.EventSubscriber

	// Watcher is set when content is read from a local mirror.
	Watcher Watcher

	// Locale is the effective content locale.
	Locale string

	// ServerAddr is the default HTTP API address.
	ServerAddr string

	// SchedulerConfig is the scheduler configuration in effect.
	SchedulerConfig domain.SchedulerConfig

	// Close releases storage handles.
	Close func() error
}

// ServiceFactory builds services from the global flags.
type ServiceFactory func(opts Options) (*Services, error)

var (
	updateService   driving.UpdateService
	indexService    driving.IndexService
	searchService   driving.SearchService
	versionService  driving.VersionService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	eventSubscriber driving.EventSubscriber
	contentWatcher  Watcher
	contentLocale   string
	serverAddr      string
	schedulerConfig domain.SchedulerConfig
	closeServices   func() error

	serviceFactory ServiceFactory
)

var globalOpts Options

var rootCmd = &cobra.Command{
	Use:   "rulebook",
	Short: "Offline rules reference with incremental content sync",
	Long: `rulebook keeps a local copy of a published rules dataset and searches it offline.

Content is fetched from a remote release, compared against stored hashes,
and only changed resources are rewritten before the search index is rebuilt.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "enable verbose logging")
	flags.StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.rulebook)")
	flags.StringVar(&globalOpts.DataDir, "data-dir", "", "data directory (default ~/.rulebook/data)")
	flags.StringVarP(&globalOpts.Locale, "locale", "l", "", "content locale (default from settings)")
	flags.BoolVar(&globalOpts.Ephemeral, "ephemeral", false, "keep the dataset and index in memory")
}

// SetVersion sets the binary version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServiceFactory registers the factory run before each command.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// SetServices installs services directly.
func SetServices(s *Services) {
	updateService = s.Updates
	indexService = s.Index
	searchService = s.Search
	versionService = s.Versions
	settingsService = s.Settings
	scheduler = s.Scheduler
	eventSubscriber = s.Events
	contentWatcher = s.Watcher
	contentLocale = s.Locale
	serverAddr = s.ServerAddr
	schedulerConfig = s.SchedulerConfig
	closeServices = s.Close
}

// Execute runs the root command with ctx and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		err = errors.Join(err, closeServices())
		closeServices = nil
	}
	return err
}

func initServices(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil {
		logger.SetVerbose(verbose)
	}

	if serviceFactory == nil {
		return nil
	}
	s, err := serviceFactory(globalOpts)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

// resolveLocale returns the flag locale, else the configured one.
func resolveLocale() string {
	if globalOpts.Locale != "" {
		return globalOpts.Locale
	}
	return contentLocale
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
