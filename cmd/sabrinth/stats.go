package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>...",
	Short: "Show play counters for tracks",
	Long: `Stats prints the started, played, and skipped counters for each
track. Counters are keyed by file name, so identically named files in
different folders share them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		for _, path := range args {
			stats, err := application.Playlist().StatsFor(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s: started=%d played=%d skipped=%d\n",
				path, stats.Started, stats.Played, stats.Skipped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
