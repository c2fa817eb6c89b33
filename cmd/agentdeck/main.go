// Command agentdeck inspects recorded or live coding-agent output streams.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	noColor bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "agentdeck",
	Short: "Parse and render coding-agent output streams",
	Long: `Agentdeck turns the line-oriented event streams emitted by coding-agent
CLIs (Codex-style envelopes, Claude-style NDJSON) into readable
conversation transcripts with step timelines and token usage.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config (default: ~/.config/agentdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func main() {
	cobra.OnInitialize(func() { slog.SetDefault(newLogger()) })
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger creates a structured logger with the configured verbosity.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
