package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sabrinth/player/internal/app"
)

var (
	flagAppDir   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sabrinth",
	Short: "Sabrinth music playback core",
	Long: `Sabrinth plays local audio folders with deterministic shuffle,
per-song play counters, and metadata resolved from tags and sidecar files.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAppDir, "app-dir", "",
		"data directory for settings, stats, and saved playlists")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"log level: debug, info, warn, error")
}

// newApplication builds an Application from the persistent flags.
func newApplication() (*app.Application, error) {
	config := app.DefaultConfig()
	config.AppDir = flagAppDir

	switch strings.ToLower(flagLogLevel) {
	case "debug":
		config.LogLevel = slog.LevelDebug
	case "info":
		config.LogLevel = slog.LevelInfo
	case "warn", "warning":
		config.LogLevel = slog.LevelWarn
	case "error":
		config.LogLevel = slog.LevelError
	}

	return app.NewApplication(config)
}
