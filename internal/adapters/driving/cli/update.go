package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

var updateJSON bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for content updates",
	Long: `Fetches the manifest, sequence, units and items for the current locale and
rewrites only the resources whose content hash changed. The search index is
rebuilt when anything changed.

Failures of individual resources are reported as a warning and do not stop
the other resources from updating.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refetch all content and rebuild the index",
	Long: `Refetches every resource regardless of stored hashes and rebuilds the
search index. Any failure aborts the refresh and nothing is committed.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	updateCmd.Flags().BoolVar(&updateJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(refreshCmd)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	if updateService == nil {
		return errors.New("update service not configured")
	}

	locale := resolveLocale()
	result, err := updateService.CheckForUpdates(cmd.Context(), locale)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}

	if updateJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printSyncResult(cmd, result)
	return nil
}

func printSyncResult(cmd *cobra.Command, result domain.SyncResult) {
	if result.Updated {
		cmd.Printf("Content updated to %s\n", displayVersion(result.Version))
		cmd.Printf("Changed: %s\n", strings.Join(result.Changed, ", "))
	} else {
		cmd.Printf("Content is up to date (%s)\n", displayVersion(result.Version))
	}
	if result.Warning != "" {
		cmd.Printf("Warning: %s\n", result.Warning)
	}
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	if updateService == nil {
		return errors.New("update service not configured")
	}

	cmd.Println("Refreshing all content...")
	result := updateService.ForceUpdateAndReindex(cmd.Context(), resolveLocale())
	if !result.OK {
		return fmt.Errorf("refresh failed: %s", result.Error)
	}

	cmd.Printf("Refreshed to %s\n", displayVersion(result.Version))
	return nil
}

func displayVersion(v string) string {
	if v == "" {
		return "no version"
	}
	return v
}
