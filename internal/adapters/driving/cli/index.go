package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Search index commands",
	RunE:  runIndexStatus,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show search index state",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from stored content",
	Long: `Normalises every stored entity into search documents and replaces the
index. The previous index keeps serving searches until the new one is ready.`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

func init() {
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if _, err := indexService.EnsureIndex(cmd.Context()); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	printIndexStats(cmd)
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if _, err := indexService.RebuildIndex(cmd.Context()); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	cmd.Println("Index rebuilt.")
	printIndexStats(cmd)
	return nil
}

func printIndexStats(cmd *cobra.Command) {
	stats := indexService.Stats()
	cmd.Printf("State:     %s\n", stats.State)
	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Terms:     %d\n", stats.Terms)
	cmd.Printf("Builds:    %d\n", stats.Builds)
	cmd.Printf("Loads:     %d\n", stats.Loads)
}
