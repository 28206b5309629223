package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/taskpilot/internal/config"
	"github.com/marcus/taskpilot/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded decisions",
	Long: `List decisions recorded to the history database.

History is off by default; enable it with history.enabled in the
config file, or record individual runs with "taskpilot eval --record".`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("tail", "n", 20, "Number of recent decisions to show")
	historyCmd.Flags().Bool("no-color", false, "Disable colored output")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyColorFlags(cmd)

	path := cfg.History.Path
	if path == "" {
		path = config.DefaultHistoryPath()
	}
	if _, statErr := os.Stat(path); statErr != nil {
		fmt.Println("no history recorded yet")
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	n, _ := cmd.Flags().GetInt("tail")
	records, err := store.Recent(n)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	total, err := store.Count()
	if err != nil {
		return fmt.Errorf("count history: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("no history recorded yet")
		return nil
	}

	s := newDemoStyles()
	fmt.Printf("\n%s %s\n\n",
		s.Title.Render("Decision History"),
		s.Muted.Render(fmt.Sprintf("(showing %d of %d)", len(records), total)))

	for _, r := range records {
		verdict := s.Success.Render("APPROVED")
		detail := fmt.Sprintf("resource=%s required=%s available=%s",
			r.Resource, percent(r.Required), percent(r.Available))
		if !r.Approved {
			verdict = s.Error.Render("REJECTED")
			detail = r.Reason
		}
		fmt.Printf("  %s  %s  %s %s\n",
			s.Muted.Render(r.Time.Local().Format("2006-01-02 15:04:05")),
			verdict,
			s.Value.Render(valueOr(r.Industry, r.TaskType)),
			s.Muted.Render(detail))
	}
	fmt.Println()
	return nil
}
