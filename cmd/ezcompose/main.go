package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ezcompose/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ezcompose",
	Short: "Compose source files, notes and diagnostics into one shareable text",
	Long: `ezcompose collects files from your workspace together with a note and the
compiler errors reported for them, and exports the accumulated text to the
clipboard, stdout, a file or a msgpack bundle.`,
	SilenceUsage: true,
}

// main registers the subcommands and global flags and runs the root command.
// Any error exits with status 1.
func main() {
	rootCmd.Version = version.String()

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to ezcompose.toml (default: search upwards from cwd)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("ui", "auto", "interactive UI (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error); overrides [log].level")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of f, or fallback when it is not a terminal.
func terminalWidth(f *os.File, fallback int) int {
	if !isTerminal(f) {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
