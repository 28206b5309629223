// Package planner generates the mock execution plan for an approved
// task: a short randomized sequence of phases with estimated durations.
package planner

import (
	"fmt"
	"math/rand"
)

// Plan step count and per-step duration bounds, inclusive.
const (
	MinSteps       = 3
	MaxSteps       = 7
	MinStepMinutes = 5
	MaxStepMinutes = 20
)

// DefaultContingency is the fixed fallback note attached to every plan.
const DefaultContingency = "Return to base if issues arise"

// Step is one phase of an execution plan.
type Step struct {
	Number  int    `json:"step"`
	Action  string `json:"action"`
	Minutes int    `json:"estimated_time_min"`
}

// Plan is an ordered execution path from start to end.
type Plan struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	Steps        []Step `json:"steps"`
	TotalMinutes int    `json:"estimated_duration_min"`
	Contingency  string `json:"contingency_plan"`
}

// Build generates a plan between the given locations. Empty locations
// default to "Base" and "Target". Step count is random in [3,7] and
// each step's duration random in [5,20] minutes; TotalMinutes is the
// sum of the step durations.
func Build(rng *rand.Rand, start, end string) Plan {
	if start == "" {
		start = "Base"
	}
	if end == "" {
		end = "Target"
	}

	count := MinSteps + rng.Intn(MaxSteps-MinSteps+1)
	steps := make([]Step, 0, count)
	total := 0
	for i := 1; i <= count; i++ {
		minutes := MinStepMinutes + rng.Intn(MaxStepMinutes-MinStepMinutes+1)
		steps = append(steps, Step{
			Number:  i,
			Action:  fmt.Sprintf("Execute phase %d", i),
			Minutes: minutes,
		})
		total += minutes
	}

	return Plan{
		Start:        start,
		End:          end,
		Steps:        steps,
		TotalMinutes: total,
		Contingency:  DefaultContingency,
	}
}
