package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagShuffle   bool
	flagSeed      string
	flagRecursive bool
	flagVolume    int
)

var playCmd = &cobra.Command{
	Use:   "play <folder>",
	Short: "Play all supported audio files in a folder",
	Long: `Play scans the folder for supported audio files and plays them in
order, advancing automatically as tracks finish and wrapping at the end.
With --shuffle the order is a deterministic permutation of the folder
content: the same seed always produces the same order, so a session can be
reproduced by passing the seed printed at startup.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		seed, err := application.Playlist().LoadFolder(args[0], flagShuffle, flagSeed, flagRecursive)
		if err != nil {
			return err
		}

		playlist := application.Playlist().Playlist()
		if len(playlist) == 0 {
			return fmt.Errorf("no supported audio files in %s", args[0])
		}

		fmt.Printf("playing %d tracks", len(playlist))
		if seed != "" {
			fmt.Printf(" (shuffle seed %s)", seed)
		}
		fmt.Println()

		if flagVolume >= 0 {
			application.Playback().SetVolume(float64(flagVolume) / 100)
		}

		application.RefreshMetadata(ctx)

		if err := application.PlayCurrent(ctx); err != nil {
			return err
		}

		// Tracks chain via completion events; block until interrupted.
		<-ctx.Done()
		return nil
	},
}

func init() {
	playCmd.Flags().BoolVar(&flagShuffle, "shuffle", false, "shuffle the playlist deterministically")
	playCmd.Flags().StringVar(&flagSeed, "seed", "", "shuffle seed (random when empty)")
	playCmd.Flags().BoolVar(&flagRecursive, "recursive", true, "scan subfolders")
	playCmd.Flags().IntVar(&flagVolume, "volume", -1, "playback volume 0-100 (default from settings)")

	rootCmd.AddCommand(playCmd)
}
