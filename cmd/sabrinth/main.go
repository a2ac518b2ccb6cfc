// Command sabrinth is the command-line surface of the Sabrinth playback
// core: play a folder, inspect track metadata, and manage saved playlists
// and play counters.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
