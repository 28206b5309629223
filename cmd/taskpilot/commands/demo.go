package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/marcus/taskpilot/internal/agent"
	"github.com/marcus/taskpilot/internal/config"
	"github.com/marcus/taskpilot/internal/history"
	"github.com/marcus/taskpilot/internal/logging"
)

// isInteractive reports whether stdout is a terminal. Override in tests.
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the canned multi-industry walkthrough",
	Long: `Run the built-in demonstration: three scenarios (drone mission,
delivery route, production job) each walked through the four-stage
evaluation with a paced step-by-step log.

Rejections are part of the demonstration, not errors: environment
sampling is random, so a scenario may be turned down on one run and
approved on the next. The command exits 0 either way.

Flags:
  --pace MS    Delay between displayed steps (default from config).
               Pacing is display-only; it never affects the decision.
  --seed N     Seed the random source for a reproducible run.
  --no-color   Disable colored output (NO_COLOR is also honored).

Examples:
  taskpilot demo                # paced, colored walkthrough
  taskpilot demo --pace 0       # instant output
  taskpilot demo --seed 42      # same decisions every time`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().Int("pace", 600, "Milliseconds between displayed steps")
	demoCmd.Flags().Int64("seed", 0, "Random seed (0 = time-based)")
	demoCmd.Flags().Bool("no-color", false, "Disable colored output")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := initLogging(cmd, cfg); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logging.Component("demo")

	applyColorFlags(cmd)

	stepPace := pace(cmd, cfg)
	if !isInteractive() {
		// Pacing only makes sense on a terminal.
		stepPace = 0
	}
	seed, _ := cmd.Flags().GetInt64("seed")

	store, err := openHistory(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	renderer := newStageRenderer(stepPace)
	evaluator := agent.New(
		agent.WithFleet(cfg.FleetTable()),
		agent.WithRand(newRand(seed)),
		agent.WithEventHandler(renderer.HandleEvent),
		agent.WithLogger(logging.Component("evaluator")),
	)

	scenarios := config.DefaultScenarios()
	start := time.Now()
	approved := 0

	for i, sc := range scenarios {
		renderScenarioHeader(i+1, len(scenarios), sc.Name, sc.TaskType, sc.Location)

		decision := evaluator.Evaluate(sc.Request())
		if decision.Approved {
			approved++
		}
		log.Event("info").
			Str("scenario", sc.Name).
			Bool("approved", decision.Approved).
			Msg("scenario finished")

		recordDecision(store, decision, log)
	}

	renderDemoSummary(len(scenarios), approved, time.Since(start))
	return nil
}

// applyColorFlags disables color when --no-color or NO_COLOR is set,
// or when stdout is not a terminal.
func applyColorFlags(cmd *cobra.Command) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor || os.Getenv("NO_COLOR") != "" || !isInteractive() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// openHistory opens the decision history when enabled in config or
// forced by a command flag. Returns nil when disabled; the nil store
// is safe to close and record to.
func openHistory(cfg *config.Config, force bool) (*history.Store, error) {
	if !cfg.History.Enabled && !force {
		return nil, nil
	}
	path := cfg.History.Path
	if path == "" {
		path = config.DefaultHistoryPath()
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// recordDecision appends to the history store when one is open.
// Recording failures are logged, never fatal.
func recordDecision(store *history.Store, d agent.Decision, log *logging.Logger) {
	if store == nil {
		return
	}
	if err := store.Append(d); err != nil {
		log.Errorf("record decision: %v", err)
	}
}
