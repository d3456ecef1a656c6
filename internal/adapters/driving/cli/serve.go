package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/rulebook/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API",
	Long: `Serves search, update and version endpoints over HTTP, runs scheduled
update checks in the background and, for a local mirror, reindexes when
files change.

Endpoints:
  GET  /search?q=&limit=&offset=&type=&unit=
  GET  /documents/{id}
  GET  /version          POST /version/ack
  GET  /index            POST /index/rebuild
  POST /updates/check    POST /updates/force
  GET  /events           (server-sent events)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	router, err := httpapi.NewRouter(&httpapi.Ports{
		Search:   searchService,
		Updates:  updateService,
		Versions: versionService,
		Index:    indexService,
		Events:   eventSubscriber,
		Locale:   resolveLocale(),
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = serverAddr
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	startBackground(ctx, g)
	g.Go(func() error {
		cmd.Printf("Listening on http://%s\n", addr)
		return httpapi.Serve(ctx, addr, router)
	})
	return g.Wait()
}

// startBackground runs the scheduler and the content watcher, when
// configured, until ctx is done.
func startBackground(ctx context.Context, g *errgroup.Group) {
	if scheduler != nil && schedulerConfig.Enabled {
		g.Go(func() error {
			if err := scheduler.Start(ctx); err != nil {
				logger.Warn("scheduler stopped: %v", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return scheduler.Stop()
		})
	}

	if contentWatcher != nil && updateService != nil {
		locale := resolveLocale()
		g.Go(func() error {
			err := contentWatcher.Watch(ctx, func(ctx context.Context) {
				if _, err := updateService.CheckForUpdates(ctx, locale); err != nil {
					logger.Error("update after file change: %v", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
}
