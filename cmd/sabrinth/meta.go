package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagArtOut string

var metaCmd = &cobra.Command{
	Use:   "meta <file>",
	Short: "Show resolved metadata for an audio file",
	Long: `Meta resolves and prints the display metadata for one file, merging
the filename, embedded tags, and any sidecar .info.json next to the file.
With --art the track's artwork (or a generated placeholder tile) is written
as a PNG.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		meta := application.MetadataFor(cmd.Context(), args[0])

		fmt.Printf("title:    %s\n", meta.Title)
		fmt.Printf("artist:   %s\n", meta.Artist)
		fmt.Printf("album:    %s\n", meta.Album)
		if meta.Year != "" {
			fmt.Printf("year:     %s\n", meta.Year)
		}
		if meta.Genre != "" {
			fmt.Printf("genre:    %s\n", meta.Genre)
		}
		if meta.DurationSeconds > 0 {
			fmt.Printf("duration: %.1fs\n", meta.DurationSeconds)
		}
		if meta.BitrateKbps > 0 {
			fmt.Printf("bitrate:  %d kbps\n", meta.BitrateKbps)
		}

		if flagArtOut != "" {
			art := application.ArtFor(cmd.Context(), args[0])
			if err := os.WriteFile(flagArtOut, art, 0o644); err != nil {
				return fmt.Errorf("writing art: %w", err)
			}
			fmt.Printf("art:      %s (%d bytes)\n", flagArtOut, len(art))
		}
		return nil
	},
}

func init() {
	metaCmd.Flags().StringVar(&flagArtOut, "art", "", "write artwork PNG to this path")

	rootCmd.AddCommand(metaCmd)
}
