package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("rulebook version %s\n", version)

		if versionService == nil {
			return
		}
		info, err := versionService.GetInfo(cmd.Context())
		if err != nil || info.CurrentVersion == "" {
			cmd.Println("content version: none")
			return
		}
		cmd.Printf("content version: %s\n", info.CurrentVersion)
		if !info.LastUpdateTime.IsZero() {
			cmd.Printf("last updated:    %s\n", info.LastUpdateTime.Local().Format(time.RFC1123))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
