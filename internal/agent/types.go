package agent

import (
	"time"

	"github.com/marcus/taskpilot/internal/environment"
	"github.com/marcus/taskpilot/internal/planner"
)

// Complexity is the coarse task-difficulty tier.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Multiplier returns the requirement multiplier for the tier. Unknown
// tiers get the medium multiplier.
func (c Complexity) Multiplier() float64 {
	switch c {
	case ComplexityLow:
		return 1.0
	case ComplexityHigh:
		return 1.6
	default:
		return 1.3
	}
}

// TaskRequest describes one task to evaluate.
type TaskRequest struct {
	Industry      string              `json:"industry,omitempty"`
	TaskType      string              `json:"task_type"`
	ResourceType  string              `json:"resource_type"`
	Location      string              `json:"location"`
	Distance      float64             `json:"distance,omitempty"` // km, >= 0
	Duration      int                 `json:"duration,omitempty"` // minutes, >= 0
	Complexity    Complexity          `json:"complexity"`
	StartLocation string              `json:"start_location,omitempty"`
	EndLocation   string              `json:"end_location,omitempty"`
	Outlook       environment.Outlook `json:"outlook,omitempty"` // forced conditions, interactive surface only
}

// Stage identifies a step of the evaluation sequence.
type Stage string

const (
	StageEnvCheck    Stage = "env_check"
	StageRequirement Stage = "requirement_calc"
	StageSelect      Stage = "resource_select"
	StagePlan        Stage = "plan"
	StageApproved    Stage = "approved"
	StageRejected    Stage = "rejected"
)

// LogEntry is one line of the decision log.
type LogEntry struct {
	Time      time.Time `json:"timestamp"`
	Step      string    `json:"step"`
	Decision  string    `json:"decision"`
	Reasoning string    `json:"reasoning"`
}

// Requirement is the capacity calculation breakdown. Total is the
// integer percentage after the complexity multiplier and the flat 20%
// safety margin are applied to the base.
type Requirement struct {
	Base       float64 `json:"base"`
	Multiplier float64 `json:"multiplier"`
	Total      int     `json:"total"`
}

// safetyMargin is the flat margin applied on top of the complexity
// multiplier.
const safetyMargin = 1.2

// defaultBase is used when a request carries neither distance nor
// duration.
const defaultBase = 30

// ComputeRequirement calculates required capacity from distance or
// duration and the complexity tier. Distance takes precedence; with
// neither set a fixed default base applies. Pure and deterministic.
func ComputeRequirement(distance float64, durationMin int, tier Complexity) Requirement {
	var base float64
	switch {
	case distance > 0:
		base = distance * 1.5
	case durationMin > 0:
		base = float64(durationMin) * 0.8
	default:
		base = defaultBase
	}

	mult := tier.Multiplier()
	return Requirement{
		Base:       base,
		Multiplier: mult,
		Total:      int(base * mult * safetyMargin),
	}
}

// Decision is the terminal result of one evaluation run. Rejection is a
// normal outcome: Approved is false and Reason says why. The full
// decision log is always attached.
type Decision struct {
	Request           TaskRequest       `json:"request"`
	Approved          bool              `json:"task_approved"`
	Reason            string            `json:"reason,omitempty"`
	ResourceID        string            `json:"resource_assigned,omitempty"`
	RequiredCapacity  int               `json:"required_capacity,omitempty"`
	AvailableCapacity int               `json:"available_capacity,omitempty"`
	Conditions        environment.Check `json:"conditions"`
	Plan              *planner.Plan     `json:"execution_plan,omitempty"`
	Log               []LogEntry        `json:"decision_log"`
	Elapsed           time.Duration     `json:"-"`
}
