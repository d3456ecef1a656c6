package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyAck bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show content version history",
	Long: `Shows the current content version, when it was last checked and updated,
and up to ten previous versions. Use --ack to mark the current version seen.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyAck, "ack", false, "mark the current version as seen")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if versionService == nil {
		return errors.New("version service not configured")
	}

	ctx := cmd.Context()
	if historyAck {
		if err := versionService.Acknowledge(ctx); err != nil {
			return fmt.Errorf("acknowledge failed: %w", err)
		}
	}

	info, err := versionService.GetInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to read version history: %w", err)
	}

	cmd.Printf("Current:      %s\n", displayVersion(info.CurrentVersion))
	if info.Commit != "" {
		cmd.Printf("Commit:       %s\n", info.Commit)
	}
	cmd.Printf("Last update:  %s\n", displayTime(info.LastUpdateTime))
	cmd.Printf("Last check:   %s\n", displayTime(info.LastCheckTime))
	cmd.Printf("Unseen:       %d\n", info.UnseenChanges)

	if len(info.History) == 0 {
		return nil
	}
	cmd.Println()
	cmd.Println("Previous versions:")
	for _, h := range info.History {
		cmd.Printf("  %s  %s\n", displayTime(h.Timestamp), h.Version)
	}
	return nil
}

func displayTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
