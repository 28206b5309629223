package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/taskpilot/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive task configuration form",
	Long: `Open the interactive terminal UI: configure an industry preset,
location, distance, complexity, and forced conditions, then watch the
evaluation play out step by step.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Int("pace", 600, "Milliseconds between displayed steps")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := initLogging(cmd, cfg); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	if !isInteractive() {
		return fmt.Errorf("tui requires a terminal (use \"taskpilot demo\" or \"taskpilot eval\" instead)")
	}

	model := ui.New(ui.Config{
		Fleet: cfg.FleetTable(),
		Pace:  pace(cmd, cfg),
	})
	return model.Run()
}
