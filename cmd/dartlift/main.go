package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dartlift/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "dartlift",
	Short: "Dart AOT snapshot lifter",
	Long:  `dartlift reconstructs typed pseudo-code from Dart AOT machine code`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(liftCmd)
	rootCmd.AddCommand(allocCmd)
	rootCmd.AddCommand(offsetsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("profile", "", "runtime profile TOML (defaults to dartlift.toml when present)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
