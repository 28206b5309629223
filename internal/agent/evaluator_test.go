package agent

import (
	"math/rand"
	"testing"
	"time"

	"github.com/marcus/taskpilot/internal/environment"
	"github.com/marcus/taskpilot/internal/fleet"
)

func testEvaluator(seed int64, opts ...Option) *Evaluator {
	base := []Option{
		WithRand(rand.New(rand.NewSource(seed))),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC) }),
	}
	return New(append(base, opts...)...)
}

func droneRequest() TaskRequest {
	return TaskRequest{
		TaskType:      environment.TaskDroneMission,
		ResourceType:  "drone",
		Location:      "Solar Farm Alpha",
		Distance:      25,
		Complexity:    ComplexityMedium,
		StartLocation: "Base-A",
		EndLocation:   "Solar Farm Alpha",
	}
}

func TestComputeRequirement(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		duration int
		tier     Complexity
		want     int
	}{
		{"distance medium", 25, 0, ComplexityMedium, 58}, // 37.5 * 1.3 * 1.2 = 58.5 -> 58
		{"distance low", 25, 0, ComplexityLow, 45},       // 37.5 * 1.0 * 1.2 = 45
		{"distance high", 25, 0, ComplexityHigh, 72},     // 37.5 * 1.6 * 1.2 = 72
		{"duration based", 0, 45, ComplexityLow, 43},     // 36 * 1.0 * 1.2 = 43.2 -> 43
		{"default base", 0, 0, ComplexityMedium, 46},     // 30 * 1.3 * 1.2 = 46.8 -> 46
		{"unknown tier uses medium", 25, 0, Complexity("extreme"), 58},
		{"distance wins over duration", 10, 100, ComplexityLow, 18}, // 15 * 1.2 = 18
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRequirement(tt.distance, tt.duration, tt.tier)
			if got.Total != tt.want {
				t.Errorf("total = %d, want %d", got.Total, tt.want)
			}
		})
	}
}

func TestRequirementMonotoneInDistance(t *testing.T) {
	for _, tier := range []Complexity{ComplexityLow, ComplexityMedium, ComplexityHigh} {
		prev := -1
		for d := 1.0; d <= 100; d++ {
			total := ComputeRequirement(d, 0, tier).Total
			if total < prev {
				t.Fatalf("tier %s: requirement decreased at distance %g (%d < %d)", tier, d, total, prev)
			}
			prev = total
		}
	}
}

func TestRequirementMonotoneInTier(t *testing.T) {
	low := ComputeRequirement(40, 0, ComplexityLow).Total
	med := ComputeRequirement(40, 0, ComplexityMedium).Total
	high := ComputeRequirement(40, 0, ComplexityHigh).Total
	if !(low < med && med < high) {
		t.Errorf("tiers not ordered: low=%d med=%d high=%d", low, med, high)
	}
}

func TestEvaluateApproved(t *testing.T) {
	req := droneRequest()
	req.Outlook = environment.OutlookFavorable

	d := testEvaluator(7).Evaluate(req)

	if !d.Approved {
		t.Fatalf("rejected: %s", d.Reason)
	}
	if d.RequiredCapacity != 58 {
		t.Errorf("required = %d, want 58", d.RequiredCapacity)
	}
	// RESOURCE-004 (100%) beats RESOURCE-001 (95%) for required 58.
	if d.ResourceID != "RESOURCE-004" {
		t.Errorf("resource = %s, want RESOURCE-004", d.ResourceID)
	}
	if d.AvailableCapacity != 100 {
		t.Errorf("available = %d, want 100", d.AvailableCapacity)
	}
	if len(d.Log) != 4 {
		t.Errorf("log has %d entries, want 4", len(d.Log))
	}
	if d.Plan == nil {
		t.Fatal("approved decision must carry a plan")
	}
	sum := 0
	for _, s := range d.Plan.Steps {
		sum += s.Minutes
	}
	if sum != d.Plan.TotalMinutes {
		t.Errorf("plan total %d != steps sum %d", d.Plan.TotalMinutes, sum)
	}
}

func TestEvaluateRejectedAtEnvironment(t *testing.T) {
	req := droneRequest()
	req.Outlook = environment.OutlookUnfavorable

	d := testEvaluator(7).Evaluate(req)

	if d.Approved {
		t.Fatal("unfavorable outlook must reject")
	}
	// Rejection at stage 1 stops the run: exactly one log entry and no
	// downstream artifacts.
	if len(d.Log) != 1 {
		t.Fatalf("log has %d entries, want exactly 1", len(d.Log))
	}
	if d.Log[0].Step != "Environment Analysis" || d.Log[0].Decision != "TASK REJECTED" {
		t.Errorf("entry = %q / %q", d.Log[0].Step, d.Log[0].Decision)
	}
	if d.Plan != nil {
		t.Error("rejected run must not compute a plan")
	}
	if d.ResourceID != "" {
		t.Error("rejected run must not assign a resource")
	}
}

func TestEvaluateRejectedAtSelection(t *testing.T) {
	req := droneRequest()
	req.Outlook = environment.OutlookFavorable
	req.Distance = 60 // 90 * 1.3 * 1.2 = 140 -> beyond any drone

	d := testEvaluator(7).Evaluate(req)

	if d.Approved {
		t.Fatal("no drone can cover 140% required capacity")
	}
	if len(d.Log) != 3 {
		t.Fatalf("log has %d entries, want 3 (env, requirement, failed selection)", len(d.Log))
	}
	if d.Log[2].Decision != "FAILED" {
		t.Errorf("last entry decision = %q, want FAILED", d.Log[2].Decision)
	}
	if d.Plan != nil {
		t.Error("selection rejection must not reach planning")
	}
}

func TestEvaluateSelectionOverInjectedTable(t *testing.T) {
	tbl := fleet.Table{
		"drone": {
			{ID: "A", Capacity: 95, Status: fleet.StatusAvailable},
			{ID: "B", Capacity: 45, Status: fleet.StatusAvailable},
			{ID: "C", Capacity: 85, Status: fleet.StatusCharging},
			{ID: "D", Capacity: 100, Status: fleet.StatusAvailable},
		},
	}
	req := droneRequest() // required 58
	req.Outlook = environment.OutlookFavorable

	d := testEvaluator(11, WithFleet(tbl)).Evaluate(req)
	if !d.Approved || d.ResourceID != "D" {
		t.Errorf("resource = %q approved=%v, want D", d.ResourceID, d.Approved)
	}

	// 101% required cannot be met: 95/45/100 available all fall short.
	req.Distance = 0
	req.Duration = 106 // 84.8 * 1.3 * 1.2 = 132 -> forces the failure path
	d = testEvaluator(11, WithFleet(tbl)).Evaluate(req)
	if d.Approved {
		t.Error("expected no-resource rejection")
	}
}

func TestEvaluateEmitsOrderedEvents(t *testing.T) {
	var events []Event
	req := droneRequest()
	req.Outlook = environment.OutlookFavorable

	testEvaluator(7, WithEventHandler(func(ev Event) {
		events = append(events, ev)
	})).Evaluate(req)

	if len(events) == 0 {
		t.Fatal("no events emitted")
	}
	if events[0].Type != EventRunStart {
		t.Errorf("first event type = %d, want EventRunStart", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != EventRunEnd {
		t.Fatalf("last event type = %d, want EventRunEnd", last.Type)
	}
	if last.Decision == nil || !last.Decision.Approved {
		t.Error("EventRunEnd must carry the approved decision")
	}

	logged := 0
	for _, ev := range events {
		if ev.Type == EventLogged {
			logged++
			if ev.Entry == nil {
				t.Fatal("EventLogged without entry")
			}
		}
	}
	if logged != 4 {
		t.Errorf("%d EventLogged events, want 4", logged)
	}
}

func TestEvaluateDeterministicForSeed(t *testing.T) {
	req := droneRequest()
	a := testEvaluator(99).Evaluate(req)
	b := testEvaluator(99).Evaluate(req)
	if a.Approved != b.Approved || a.ResourceID != b.ResourceID {
		t.Error("same seed must produce the same decision")
	}
	if a.Approved && a.Plan.TotalMinutes != b.Plan.TotalMinutes {
		t.Error("same seed must produce the same plan")
	}
}
