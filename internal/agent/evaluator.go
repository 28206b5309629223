// Package agent implements the task evaluator: a fixed four-stage pass
// (environment check, requirement calculation, resource selection,
// execution planning) from a task request to an approval or rejection,
// with an ordered decision log.
//
// The evaluator holds no state between runs. Randomness, the fleet
// table, the clock, and the event sink are all injectable so runs are
// deterministic under test.
package agent

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/marcus/taskpilot/internal/environment"
	"github.com/marcus/taskpilot/internal/fleet"
	"github.com/marcus/taskpilot/internal/logging"
	"github.com/marcus/taskpilot/internal/planner"
)

// Evaluator runs the four-stage evaluation sequence.
type Evaluator struct {
	fleet   fleet.Table
	rng     *rand.Rand
	now     func() time.Time
	handler EventHandler
	logger  *logging.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithFleet sets the resource table to select from.
func WithFleet(t fleet.Table) Option {
	return func(e *Evaluator) {
		e.fleet = t
	}
}

// WithRand sets the random source used for condition sampling and plan
// generation. Pass a seeded source for deterministic runs.
func WithRand(rng *rand.Rand) Option {
	return func(e *Evaluator) {
		e.rng = rng
	}
}

// WithClock sets the timestamp source for log entries.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// WithEventHandler sets the callback for lifecycle events.
func WithEventHandler(h EventHandler) Option {
	return func(e *Evaluator) {
		e.handler = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// New creates an Evaluator. Defaults: built-in fleet table,
// time-seeded randomness, wall clock, global logger.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		fleet: fleet.Default(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Component("evaluator")
	}
	return e
}

// Evaluate runs the four stages for one request and returns the
// terminal decision. Rejection at any stage short-circuits: no later
// stage executes or logs. The stage sequence is
// env_check -> requirement_calc -> resource_select -> plan -> approved,
// with rejected reachable only from env_check and resource_select.
func (e *Evaluator) Evaluate(req TaskRequest) Decision {
	start := e.now()
	log := make([]LogEntry, 0, 4)

	e.emit(Event{Type: EventRunStart, Time: start, Message: runLabel(req)})
	e.logger.Event("info").
		Str("task_type", req.TaskType).
		Str("location", req.Location).
		Msg("evaluation started")

	// Stage 1: environment check.
	e.stage(StageEnvCheck, fmt.Sprintf("Checking conditions for %s", orUnknown(req.Location)))
	check := environment.NewSampler(e.rng).Check(req.Location, req.TaskType, req.Outlook)
	e.emitFields(StageEnvCheck, map[string]any{
		"category": string(check.Category),
		"details":  check.Details,
	})

	if !check.Safe {
		log = e.append(log, StageRejected, "Environment Analysis", "TASK REJECTED", check.Reason)
		return e.finish(Decision{
			Request:    req,
			Approved:   false,
			Reason:     check.Reason,
			Conditions: check,
			Log:        log,
		}, start)
	}
	log = e.append(log, StageEnvCheck, "Environment Analysis", "CONDITIONS APPROVED", check.Reason)

	// Stage 2: requirement calculation.
	e.stage(StageRequirement, "Calculating resource requirements")
	requirement := ComputeRequirement(req.Distance, req.Duration, req.Complexity)
	e.emitFields(StageRequirement, map[string]any{
		"base":       requirement.Base,
		"multiplier": requirement.Multiplier,
		"total":      requirement.Total,
	})
	log = e.append(log, StageRequirement, "Requirement Analysis",
		fmt.Sprintf("Required Capacity: %d%%", requirement.Total),
		fmt.Sprintf("Distance: %g, Complexity: %s", req.Distance, complexityOrDefault(req.Complexity)))

	// Stage 3: resource selection.
	resourceType := req.ResourceType
	if resourceType == "" {
		resourceType = "drone"
	}
	e.stage(StageSelect, fmt.Sprintf("Fetching available %ss", resourceType))
	resource, ok := e.fleet.Select(resourceType, requirement.Total)
	if !ok {
		reason := fmt.Sprintf("No %s available with required capacity (%d%%)", resourceType, requirement.Total)
		log = e.append(log, StageRejected, "Resource Selection", "FAILED",
			fmt.Sprintf("No %s available with capacity >= %d%%", resourceType, requirement.Total))
		return e.finish(Decision{
			Request:          req,
			Approved:         false,
			Reason:           reason,
			RequiredCapacity: requirement.Total,
			Conditions:       check,
			Log:              log,
		}, start)
	}
	log = e.append(log, StageSelect, "Resource Selection",
		fmt.Sprintf("Selected %s", resource.ID),
		fmt.Sprintf("Capacity: %d%%, Status: %s", resource.Capacity, resource.Status))

	// Stage 4: execution planning. Planning itself appends no log
	// entry; only the final decision does.
	e.stage(StagePlan, "Planning execution path")
	plan := planner.Build(e.rng, req.StartLocation, req.EndLocation)
	e.emitFields(StagePlan, map[string]any{
		"steps":   len(plan.Steps),
		"minutes": plan.TotalMinutes,
	})

	log = e.append(log, StageApproved, "Final Decision", "TASK APPROVED",
		fmt.Sprintf("All checks passed. %s ready for deployment.", resource.ID))

	return e.finish(Decision{
		Request:           req,
		Approved:          true,
		ResourceID:        resource.ID,
		RequiredCapacity:  requirement.Total,
		AvailableCapacity: resource.Capacity,
		Conditions:        check,
		Plan:              &plan,
		Log:               log,
	}, start)
}

// append records a log entry and emits it to the event handler.
func (e *Evaluator) append(log []LogEntry, stage Stage, step, decision, reasoning string) []LogEntry {
	entry := LogEntry{
		Time:      e.now(),
		Step:      step,
		Decision:  decision,
		Reasoning: reasoning,
	}
	e.emit(Event{Type: EventLogged, Time: entry.Time, Stage: stage, Entry: &entry})
	e.logger.Event("debug").
		Str("step", step).
		Str("decision", decision).
		Msg(reasoning)
	return append(log, entry)
}

func (e *Evaluator) stage(stage Stage, message string) {
	e.emit(Event{Type: EventStageStart, Time: e.now(), Stage: stage, Message: message})
}

// emitFields sends a follow-up event with stage detail payloads.
func (e *Evaluator) emitFields(stage Stage, fields map[string]any) {
	e.emit(Event{Type: EventStageInfo, Time: e.now(), Stage: stage, Fields: fields})
}

func (e *Evaluator) finish(d Decision, start time.Time) Decision {
	d.Elapsed = e.now().Sub(start)
	e.emit(Event{Type: EventRunEnd, Time: e.now(), Decision: &d})
	e.logger.Event("info").
		Bool("approved", d.Approved).
		Str("resource", d.ResourceID).
		Dur("elapsed", d.Elapsed).
		Msg("evaluation finished")
	return d
}

func (e *Evaluator) emit(ev Event) {
	if e.handler != nil {
		e.handler(ev)
	}
}

func runLabel(req TaskRequest) string {
	if req.Industry != "" {
		return req.Industry
	}
	return req.TaskType
}

func orUnknown(location string) string {
	if location == "" {
		return "Unknown"
	}
	return location
}

func complexityOrDefault(c Complexity) Complexity {
	if c == "" {
		return ComplexityMedium
	}
	return c
}
