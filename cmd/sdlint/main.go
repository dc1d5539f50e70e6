package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sdlint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "sdlint",
	Short: "GraphQL SDL linter for deprecation lifecycles",
	Long:  `sdlint checks GraphQL schema files for deprecations that never name a deletion date and flags members whose date has already passed`,
}

// main wires the subcommands and global flags into the root command and
// executes it. A returned error exits the process with status code 1.
func main() {
	// Version for the automatic --version flag
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Global flags
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-file timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")
	rootCmd.PersistentFlags().String("config", "", "path to the manifest (default: nearest sdlint.toml up the tree)")

	// Profiling flags, read by setupProfiling
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the given path")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the given path on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to the given path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
