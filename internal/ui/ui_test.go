package ui

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/taskpilot/internal/agent"
)

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tea.Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	model, ok := m.(Model)
	if !ok {
		t.Fatal("Update returned unexpected model type")
	}
	return model
}

func TestNewDefaults(t *testing.T) {
	m := New(Config{})
	if m.distance != defaultDistance {
		t.Errorf("distance = %d, want %d", m.distance, defaultDistance)
	}
	if m.phase != phaseForm {
		t.Error("new model should start at the form")
	}
	if complexities[m.complexityIdx] != agent.ComplexityMedium {
		t.Error("default complexity should be medium")
	}
	if m.cfg.Pace == 0 {
		t.Error("pace default not applied")
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := *New(Config{})
	if m.focus != focusIndustry {
		t.Fatalf("initial focus = %d", m.focus)
	}

	got := update(t, m, key("tab"))
	if got.focus != focusLocation {
		t.Errorf("focus after tab = %d, want location", got.focus)
	}

	// A full cycle returns to the start.
	got = m
	for i := 0; i < focusCount; i++ {
		got = update(t, got, key("tab"))
	}
	if got.focus != focusIndustry {
		t.Errorf("focus after full cycle = %d, want industry", got.focus)
	}
}

func TestSliderAdjustAndClamp(t *testing.T) {
	m := *New(Config{})
	m.focus = focusDistance

	got := update(t, m, key("right"))
	if got.distance != defaultDistance+distanceStep {
		t.Errorf("distance = %d, want %d", got.distance, defaultDistance+distanceStep)
	}

	// Clamp at the lower bound.
	got = m
	for i := 0; i < 30; i++ {
		got = update(t, got, key("left"))
	}
	if got.distance != minDistance {
		t.Errorf("distance = %d, want clamp at %d", got.distance, minDistance)
	}

	// Clamp at the upper bound.
	for i := 0; i < 50; i++ {
		got = update(t, got, key("right"))
	}
	if got.distance != maxDistance {
		t.Errorf("distance = %d, want clamp at %d", got.distance, maxDistance)
	}
}

func TestSelectStopsAtEnds(t *testing.T) {
	m := *New(Config{})
	m.focus = focusIndustry

	got := update(t, m, key("left"), key("left"))
	if got.industryIdx != 0 {
		t.Errorf("industryIdx = %d, want 0", got.industryIdx)
	}

	for i := 0; i < 10; i++ {
		got = update(t, got, key("right"))
	}
	if got.industryIdx != len(industries)-1 {
		t.Errorf("industryIdx = %d, want %d", got.industryIdx, len(industries)-1)
	}
}

func TestTypingIntoLocation(t *testing.T) {
	m := *New(Config{})
	m.location.SetValue("")
	got := update(t, m, key("tab")) // focus location
	got = update(t, got, key("q"))  // must type, not quit
	if got.quitting {
		t.Fatal("typed q must not quit while editing location")
	}
	if got.location.Value() != "q" {
		t.Errorf("location = %q, want q", got.location.Value())
	}
}

func TestQuitKeys(t *testing.T) {
	m := *New(Config{})
	if got := update(t, m, key("q")); !got.quitting {
		t.Error("q should quit from the form")
	}
	if got := update(t, m, key("ctrl+c")); !got.quitting {
		t.Error("ctrl+c should always quit")
	}
}

func TestRunRejectedAtEnvironment(t *testing.T) {
	m := *New(Config{
		Pace: time.Millisecond,
		Rand: rand.New(rand.NewSource(5)),
	})
	m.outlookIdx = 2 // unfavorable: always rejected
	m.focus = focusRun

	got := update(t, m, key("enter"))
	if got.phase != phaseRunning {
		t.Fatalf("phase = %d, want running", got.phase)
	}
	if got.decision == nil || got.decision.Approved {
		t.Fatal("unfavorable outlook must produce a rejection")
	}
	// Stage-1 rejection: one stage header plus one rejected entry.
	if len(got.lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(got.lines))
	}

	// Drive the reveal to completion.
	for got.phase == phaseRunning {
		got = update(t, got, stepMsg{})
	}
	if got.phase != phaseDone {
		t.Fatalf("phase = %d, want done", got.phase)
	}
	if got.revealed != len(got.lines) {
		t.Errorf("revealed %d of %d lines", got.revealed, len(got.lines))
	}
}

func TestRunApprovedShowsResource(t *testing.T) {
	m := *New(Config{
		Pace: time.Millisecond,
		Rand: rand.New(rand.NewSource(5)),
	})
	m.outlookIdx = 0 // favorable: always safe
	m.focus = focusRun

	got := update(t, m, key("enter"))
	if got.decision == nil || !got.decision.Approved {
		t.Fatal("favorable outlook at default distance must approve")
	}
	// Distance 25 medium -> required 58 -> RESOURCE-004 wins.
	if got.decision.ResourceID != "RESOURCE-004" {
		t.Errorf("resource = %s, want RESOURCE-004", got.decision.ResourceID)
	}

	for got.phase == phaseRunning {
		got = update(t, got, stepMsg{})
	}
	view := got.View()
	if view == "" {
		t.Fatal("done view should not be empty")
	}
}

func TestResetAfterDone(t *testing.T) {
	m := *New(Config{Pace: time.Millisecond, Rand: rand.New(rand.NewSource(5))})
	m.outlookIdx = 0
	m.focus = focusRun

	got := update(t, m, key("enter"))
	for got.phase == phaseRunning {
		got = update(t, got, stepMsg{})
	}

	got = update(t, got, key("r"))
	if got.phase != phaseForm {
		t.Errorf("phase after reset = %d, want form", got.phase)
	}
	if got.decision != nil || len(got.lines) != 0 {
		t.Error("reset should clear the previous run")
	}
}

func TestLineFromEvent(t *testing.T) {
	entry := agent.LogEntry{Step: "Resource Selection", Decision: "FAILED", Reasoning: "none left"}
	line, ok := lineFromEvent(agent.Event{Type: agent.EventLogged, Entry: &entry})
	if !ok {
		t.Fatal("EventLogged should produce a line")
	}
	if line.Status != "error" {
		t.Errorf("status = %s, want error", line.Status)
	}

	if _, ok := lineFromEvent(agent.Event{Type: agent.EventRunEnd}); ok {
		t.Error("EventRunEnd should not produce a line")
	}
}

func TestViewRendersForm(t *testing.T) {
	m := *New(Config{})
	view := m.View()
	if view == "" {
		t.Fatal("form view empty")
	}
	for _, want := range []string{"Task Configuration", "Agent Decision Log", "Distance"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
