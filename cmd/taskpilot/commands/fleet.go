package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/marcus/taskpilot/internal/fleet"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Show the resource tables",
	Long: `Print the resource tables the evaluator selects from: the built-in
demo fleet plus any per-type overrides from the config file.`,
	RunE: runFleet,
}

func init() {
	fleetCmd.Flags().Bool("no-color", false, "Disable colored output")
	rootCmd.AddCommand(fleetCmd)
}

func runFleet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyColorFlags(cmd)

	s := newDemoStyles()
	table := cfg.FleetTable()

	types := table.Types()
	sort.Strings(types)

	for _, resourceType := range types {
		fmt.Printf("\n%s\n", s.Title.Render(resourceType))
		for _, r := range table[resourceType] {
			marker := s.Success.Render("●")
			if r.Status != fleet.StatusAvailable {
				marker = s.Muted.Render("○")
			}
			fmt.Printf("  %s %s %s %s\n",
				marker,
				s.Value.Render(r.ID),
				s.Label.Render(fmt.Sprintf("capacity=%s", percent(r.Capacity))),
				s.Muted.Render(fmt.Sprintf("status=%s location=%s", r.Status, valueOr(r.Location, "-"))))
		}
	}
	fmt.Println()
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
