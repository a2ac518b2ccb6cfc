package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Manage saved playlists",
}

var playlistsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved playlist names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		names, err := application.Playlist().ListSavedPlaylists()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var playlistsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the tracks of a saved playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		if _, err := application.Playlist().LoadSavedPlaylist(args[0], false, ""); err != nil {
			return err
		}
		for _, path := range application.Playlist().Playlist() {
			fmt.Println(path)
		}
		return nil
	},
}

var playlistsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		return application.Playlist().DeleteSavedPlaylist(args[0])
	},
}

func init() {
	playlistsCmd.AddCommand(playlistsListCmd, playlistsShowCmd, playlistsDeleteCmd)
	rootCmd.AddCommand(playlistsCmd)
}
