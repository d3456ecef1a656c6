package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reindex when the local content mirror changes",
	Long: `Watches the local content mirror and runs an update check after each
burst of file changes. Requires the filesystem listing backend.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if updateService == nil {
		return errors.New("update service not configured")
	}
	if contentWatcher == nil {
		return errors.New("watch requires content from a local directory (listing backend \"filesystem\")")
	}

	locale := resolveLocale()

	// Bring the store in line with the mirror before waiting for changes.
	result, err := updateService.CheckForUpdates(cmd.Context(), locale)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	printSyncResult(cmd, result)

	cmd.Println("Watching for changes (Ctrl+C to stop)...")
	err = contentWatcher.Watch(cmd.Context(), func(ctx context.Context) {
		result, err := updateService.CheckForUpdates(ctx, locale)
		if err != nil {
			cmd.PrintErrf("update check failed: %v\n", err)
			return
		}
		printSyncResult(cmd, result)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
