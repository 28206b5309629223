package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/taskpilot/internal/agent"
)

// demoStyles holds lipgloss styles for colored demo output.
type demoStyles struct {
	Title   lipgloss.Style
	Stage   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Accent  lipgloss.Style
}

func newDemoStyles() demoStyles {
	return demoStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		Stage:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Accent:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
	}
}

// stageRenderer prints evaluator events as they arrive. Events are
// emitted synchronously from the evaluating goroutine, so no locking
// is needed. Pacing sleeps are cosmetic and happen here, never inside
// the evaluator.
type stageRenderer struct {
	styles demoStyles
	pace   time.Duration
	step   int
}

func newStageRenderer(pace time.Duration) *stageRenderer {
	return &stageRenderer{
		styles: newDemoStyles(),
		pace:   pace,
	}
}

// HandleEvent renders one evaluator event to the terminal.
func (r *stageRenderer) HandleEvent(e agent.Event) {
	switch e.Type {
	case agent.EventRunStart:
		r.step = 0

	case agent.EventStageStart:
		r.pause()
		r.step++
		fmt.Printf("\n  %s %s\n",
			r.styles.Stage.Render(fmt.Sprintf("STEP %d:", r.step)),
			r.styles.Value.Render(e.Message+"..."))

	case agent.EventStageInfo:
		for _, line := range fieldLines(e.Fields) {
			fmt.Printf("      %s\n", r.styles.Muted.Render(line))
		}

	case agent.EventLogged:
		r.pause()
		style := r.styles.Success
		switch e.Entry.Decision {
		case "TASK REJECTED", "FAILED":
			style = r.styles.Error
		}
		fmt.Printf("  %s %s %s\n",
			style.Render("|"),
			r.styles.Label.Render(e.Entry.Step+":"),
			style.Render(e.Entry.Decision))
		if e.Entry.Reasoning != "" {
			fmt.Printf("      %s\n", r.styles.Muted.Render(e.Entry.Reasoning))
		}

	case agent.EventRunEnd:
		r.pause()
		r.renderDecision(e.Decision)
	}
}

func (r *stageRenderer) pause() {
	if r.pace > 0 {
		time.Sleep(r.pace)
	}
}

// renderDecision prints the terminal decision panel.
func (r *stageRenderer) renderDecision(d *agent.Decision) {
	s := r.styles
	hr := strings.Repeat("─", 44)

	fmt.Println()
	fmt.Println("  " + s.Muted.Render(hr))
	if d.Approved {
		fmt.Printf("  %s\n", s.Success.Render("TASK APPROVED"))
		fmt.Printf("  %s %s\n", s.Label.Render("Resource:"), s.Value.Render(d.ResourceID))
		fmt.Printf("  %s %s\n", s.Label.Render("Capacity:"),
			s.Value.Render(fmt.Sprintf("%s available, %s required",
				percent(d.AvailableCapacity), percent(d.RequiredCapacity))))
		if d.Plan != nil {
			fmt.Printf("  %s %s\n", s.Label.Render("Plan:"),
				s.Value.Render(fmt.Sprintf("%d phases, ~%d minutes total",
					len(d.Plan.Steps), d.Plan.TotalMinutes)))
			fmt.Printf("  %s %s\n", s.Label.Render("Contingency:"), s.Muted.Render(d.Plan.Contingency))
		}
	} else {
		fmt.Printf("  %s\n", s.Error.Render("TASK REJECTED"))
		fmt.Printf("  %s %s\n", s.Label.Render("Reason:"), s.Value.Render(d.Reason))
	}
	fmt.Println("  " + s.Muted.Render(hr))
}

// renderScenarioHeader prints the banner before a scenario run.
func renderScenarioHeader(index, total int, name, taskType, location string) {
	s := newDemoStyles()
	fmt.Println()
	fmt.Printf("%s %s\n",
		s.Accent.Render(fmt.Sprintf("[%d/%d]", index, total)),
		s.Title.Render(name))
	fmt.Printf("  %s %s   %s %s\n",
		s.Label.Render("Task:"), s.Value.Render(taskType),
		s.Label.Render("Location:"), s.Value.Render(location))
}

// renderDemoSummary prints the closing tally.
func renderDemoSummary(total, approved int, elapsed time.Duration) {
	s := newDemoStyles()
	hr := strings.Repeat("─", 44)

	fmt.Println()
	fmt.Println(s.Muted.Render(hr))
	fmt.Println(s.Title.Render("Demo Complete"))
	fmt.Printf("  %s %s\n", s.Label.Render("Scenarios:"),
		s.Value.Render(fmt.Sprintf("%d run, %d approved, %d rejected", total, approved, total-approved)))
	fmt.Printf("  %s %s\n", s.Label.Render("Elapsed:"), s.Value.Render(elapsed.Round(time.Millisecond).String()))
	fmt.Println()
}

// fieldLines flattens stage detail fields into display lines with
// stable ordering for the handful of known keys.
func fieldLines(fields map[string]any) []string {
	var lines []string
	for _, key := range []string{"category", "base", "multiplier", "total", "steps", "minutes"} {
		if v, ok := fields[key]; ok {
			lines = append(lines, fmt.Sprintf("%s: %v", key, v))
		}
	}
	if details, ok := fields["details"].(map[string]any); ok {
		for _, key := range []string{
			"condition", "wind_speed", "visibility",
			"traffic_level", "estimated_delay_min", "road_status",
			"machine_status", "temperature", "power_status",
		} {
			if v, ok := details[key]; ok {
				lines = append(lines, fmt.Sprintf("%s: %v", key, v))
			}
		}
	}
	return lines
}
