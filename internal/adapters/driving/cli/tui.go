package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rulebook/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for rulebook.

The TUI searches the local index, shows full documents, and reports the
content version with controls to check for updates or force a refresh.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Open
  u, r, a  - Check updates, force refresh, mark seen (status view)
  Esc      - Back
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Search:   searchService,
		Updates:  updateService,
		Versions: versionService,
		Index:    indexService,
		Events:   eventSubscriber,
		Locale:   resolveLocale(),
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Background tasks stop when the TUI exits.
	ctx, cancel := context.WithCancel(cmd.Context())
	g, gctx := errgroup.WithContext(ctx)
	startBackground(gctx, g)

	runErr := app.WithContext(ctx).Run()
	cancel()
	if waitErr := g.Wait(); waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return errors.Join(runErr, waitErr)
	}
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}
