// Package commands implements the taskpilot CLI commands using cobra.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "0.2.0"
)

var rootCmd = &cobra.Command{
	Use:   "taskpilot",
	Short: "Autonomous task evaluation showcase",
	Long: `Taskpilot walks tasks through a four-stage evaluation pipeline:
environment check, requirement calculation, resource selection, and
execution planning. Each run produces a step-by-step decision log
ending in an approval or a rejection.

Run "taskpilot demo" for the canned multi-industry walkthrough, or
"taskpilot tui" for the interactive form.`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}
