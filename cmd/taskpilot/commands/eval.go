package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/taskpilot/internal/agent"
	"github.com/marcus/taskpilot/internal/environment"
	"github.com/marcus/taskpilot/internal/logging"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a single task",
	Long: `Evaluate one task built from flags and print the decision log.

A rejection is a normal outcome, not an error; the command exits 0
either way. Use --json for machine-readable output.

Examples:
  taskpilot eval --task-type drone_mission --distance 25
  taskpilot eval --task-type delivery_route --resource vehicle --distance 15 --complexity high
  taskpilot eval --task-type production_job --resource machine --duration 45 --complexity low
  taskpilot eval --task-type drone_mission --distance 25 --outlook favorable --seed 7 --json`,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().String("task-type", "drone_mission", "Task type (drone_mission, delivery_route, production_job, ...)")
	evalCmd.Flags().String("resource", "drone", "Resource type to select from")
	evalCmd.Flags().String("location", "", "Target location")
	evalCmd.Flags().Float64("distance", 0, "Distance in km")
	evalCmd.Flags().Int("duration", 0, "Duration in minutes (used when distance is 0)")
	evalCmd.Flags().String("complexity", "medium", "Complexity tier (low, medium, high)")
	evalCmd.Flags().String("outlook", "", "Force conditions (favorable, moderate, unfavorable)")
	evalCmd.Flags().Int64("seed", 0, "Random seed (0 = time-based)")
	evalCmd.Flags().Bool("json", false, "Print the decision as JSON")
	evalCmd.Flags().Bool("record", false, "Record the decision to history even when disabled in config")
	evalCmd.Flags().Bool("no-color", false, "Disable colored output")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := initLogging(cmd, cfg); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logging.Component("eval")

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	record, _ := cmd.Flags().GetBool("record")
	seed, _ := cmd.Flags().GetInt64("seed")

	store, err := openHistory(cfg, record)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts := []agent.Option{
		agent.WithFleet(cfg.FleetTable()),
		agent.WithRand(newRand(seed)),
		agent.WithLogger(logging.Component("evaluator")),
	}
	if !jsonOut {
		applyColorFlags(cmd)
		renderer := newStageRenderer(0)
		opts = append(opts, agent.WithEventHandler(renderer.HandleEvent))
	}

	decision := agent.New(opts...).Evaluate(req)
	recordDecision(store, decision, log)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(decision)
	}
	return nil
}

// requestFromFlags builds the task request, validating enum flags.
func requestFromFlags(cmd *cobra.Command) (agent.TaskRequest, error) {
	taskType, _ := cmd.Flags().GetString("task-type")
	resource, _ := cmd.Flags().GetString("resource")
	location, _ := cmd.Flags().GetString("location")
	distance, _ := cmd.Flags().GetFloat64("distance")
	duration, _ := cmd.Flags().GetInt("duration")
	complexity, _ := cmd.Flags().GetString("complexity")
	outlook, _ := cmd.Flags().GetString("outlook")

	if distance < 0 {
		return agent.TaskRequest{}, fmt.Errorf("--distance must be >= 0")
	}
	if duration < 0 {
		return agent.TaskRequest{}, fmt.Errorf("--duration must be >= 0")
	}

	tier := agent.Complexity(strings.ToLower(complexity))
	switch tier {
	case agent.ComplexityLow, agent.ComplexityMedium, agent.ComplexityHigh:
	default:
		return agent.TaskRequest{}, fmt.Errorf("invalid --complexity %q (want low, medium, or high)", complexity)
	}

	forced := environment.Outlook(strings.ToLower(outlook))
	switch forced {
	case environment.OutlookNone, environment.OutlookFavorable,
		environment.OutlookModerate, environment.OutlookUnfavorable:
	default:
		return agent.TaskRequest{}, fmt.Errorf("invalid --outlook %q (want favorable, moderate, or unfavorable)", outlook)
	}

	return agent.TaskRequest{
		TaskType:     taskType,
		ResourceType: resource,
		Location:     location,
		Distance:     distance,
		Duration:     duration,
		Complexity:   tier,
		EndLocation:  location,
		Outlook:      forced,
	}, nil
}
