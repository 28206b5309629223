// Package ui provides the interactive terminal surface: a task
// configuration form on the left and the agent decision log on the
// right. The same evaluator drives this surface and the console demo;
// this package only renders.
package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/taskpilot/internal/agent"
	"github.com/marcus/taskpilot/internal/environment"
	"github.com/marcus/taskpilot/internal/fleet"
)

// Config holds the knobs the TUI needs from the caller.
type Config struct {
	Fleet fleet.Table
	Pace  time.Duration // delay between revealed log steps
	Rand  *rand.Rand    // nil for time-seeded
}

// industry is one selectable industry preset.
type industry struct {
	Label        string
	TaskType     string
	ResourceType string
}

var industries = []industry{
	{"Autonomous Drones", environment.TaskDroneMission, "drone"},
	{"Logistics & Delivery", environment.TaskDeliveryRoute, "vehicle"},
	{"Manufacturing", environment.TaskProductionJob, "machine"},
	{"Healthcare", "inspection_task", "unit"},
	{"Energy Management", "maintenance_check", "unit"},
}

var complexities = []agent.Complexity{
	agent.ComplexityLow,
	agent.ComplexityMedium,
	agent.ComplexityHigh,
}

type outlookChoice struct {
	Label   string
	Outlook environment.Outlook
}

var outlooks = []outlookChoice{
	{"Favorable (Clear, Low Wind)", environment.OutlookFavorable},
	{"Moderate (Cloudy, Medium Wind)", environment.OutlookModerate},
	{"Unfavorable (Rain / High Wind)", environment.OutlookUnfavorable},
}

// Distance slider bounds.
const (
	minDistance     = 5
	maxDistance     = 100
	defaultDistance = 25
	distanceStep    = 5
)

// Form focus order.
const (
	focusIndustry = iota
	focusLocation
	focusDistance
	focusComplexity
	focusOutlook
	focusRun
	focusCount
)

type phase int

const (
	phaseForm phase = iota
	phaseRunning
	phaseDone
)

// logLine is one rendered decision-log row.
type logLine struct {
	Title     string
	Decision  string
	Reasoning string
	Status    string // info, success, error
}

// stepMsg advances the paced log reveal.
type stepMsg struct{}

// Model holds the TUI state.
type Model struct {
	cfg    Config
	styles *Styles

	width  int
	height int

	focus         int
	industryIdx   int
	complexityIdx int
	outlookIdx    int
	distance      int
	location      textinput.Model

	phase    phase
	lines    []logLine
	revealed int
	decision *agent.Decision

	quitting bool
}

// Styles holds lipgloss styles for the UI.
type Styles struct {
	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style
	SuccessBorder  lipgloss.Style
	ErrorBorder    lipgloss.Style

	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style

	LogInfo    lipgloss.Style
	LogSuccess lipgloss.Style
	LogError   lipgloss.Style

	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	HelpKey  lipgloss.Style
	HelpText lipgloss.Style
}

func newStyles() *Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#666", Dark: "#888"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	green := lipgloss.AdaptiveColor{Light: "#22863a", Dark: "#3fb950"}
	red := lipgloss.AdaptiveColor{Light: "#cb2431", Dark: "#f85149"}
	blue := lipgloss.AdaptiveColor{Light: "#0366d6", Dark: "#58a6ff"}

	return &Styles{
		ActiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight),

		InactiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle),

		SuccessBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(green),

		ErrorBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(red),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			MarginBottom(1),

		Label: lipgloss.NewStyle().
			Foreground(subtle),

		Value: lipgloss.NewStyle().
			Bold(true),

		Highlight: lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(subtle),

		LogInfo:    lipgloss.NewStyle().Foreground(blue),
		LogSuccess: lipgloss.NewStyle().Foreground(green).Bold(true),
		LogError:   lipgloss.NewStyle().Foreground(red).Bold(true),

		Button: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 2),

		ButtonActive: lipgloss.NewStyle().
			Background(highlight).
			Foreground(lipgloss.Color("#fff")).
			Bold(true).
			Padding(0, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true),

		HelpText: lipgloss.NewStyle().
			Foreground(subtle),
	}
}

// New creates a new TUI model.
func New(cfg Config) *Model {
	if cfg.Fleet == nil {
		cfg.Fleet = fleet.Default()
	}
	if cfg.Pace <= 0 {
		cfg.Pace = 600 * time.Millisecond
	}

	location := textinput.New()
	location.Placeholder = "Target location"
	location.SetValue("Solar Farm Alpha")
	location.CharLimit = 64

	return &Model{
		cfg:           cfg,
		styles:        newStyles(),
		width:         100,
		height:        30,
		complexityIdx: 1, // medium
		distance:      defaultDistance,
		location:      location,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m Model) stepCmd() tea.Cmd {
	return tea.Tick(m.cfg.Pace, func(time.Time) tea.Msg {
		return stepMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stepMsg:
		if m.phase != phaseRunning {
			return m, nil
		}
		m.revealed++
		if m.revealed >= len(m.lines) {
			m.revealed = len(m.lines)
			m.phase = phaseDone
			return m, nil
		}
		return m, m.stepCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// While the location input is focused, printable keys belong to it.
	typing := m.phase == phaseForm && m.focus == focusLocation

	if key == "q" && !typing {
		m.quitting = true
		return m, tea.Quit
	}

	if m.phase == phaseDone && (key == "r" || key == "enter") {
		m.phase = phaseForm
		m.lines = nil
		m.revealed = 0
		m.decision = nil
		return m, nil
	}

	if m.phase != phaseForm {
		return m, nil
	}

	switch key {
	case "tab", "down":
		m.focus = (m.focus + 1) % focusCount
		m.syncLocationFocus()
		return m, nil

	case "shift+tab", "up":
		m.focus = (m.focus + focusCount - 1) % focusCount
		m.syncLocationFocus()
		return m, nil

	case "left", "right":
		if m.focus != focusLocation {
			dir := 1
			if key == "left" {
				dir = -1
			}
			m.adjust(dir)
			return m, nil
		}

	case "enter":
		if m.focus == focusRun {
			return m.startRun()
		}
		m.focus = (m.focus + 1) % focusCount
		m.syncLocationFocus()
		return m, nil
	}

	if typing {
		var cmd tea.Cmd
		m.location, cmd = m.location.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) syncLocationFocus() {
	if m.focus == focusLocation {
		m.location.Focus()
	} else {
		m.location.Blur()
	}
}

// adjust changes the focused select/slider by direction -1 or +1.
func (m *Model) adjust(dir int) {
	switch m.focus {
	case focusIndustry:
		m.industryIdx = clampIndex(m.industryIdx+dir, len(industries))
	case focusDistance:
		m.distance += dir * distanceStep
		if m.distance < minDistance {
			m.distance = minDistance
		}
		if m.distance > maxDistance {
			m.distance = maxDistance
		}
	case focusComplexity:
		m.complexityIdx = clampIndex(m.complexityIdx+dir, len(complexities))
	case focusOutlook:
		m.outlookIdx = clampIndex(m.outlookIdx+dir, len(outlooks))
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// request builds the evaluator request from the form state.
func (m *Model) request() agent.TaskRequest {
	ind := industries[m.industryIdx]
	location := strings.TrimSpace(m.location.Value())
	return agent.TaskRequest{
		Industry:     ind.Label,
		TaskType:     ind.TaskType,
		ResourceType: ind.ResourceType,
		Location:     location,
		Distance:     float64(m.distance),
		Complexity:   complexities[m.complexityIdx],
		EndLocation:  location,
		Outlook:      outlooks[m.outlookIdx].Outlook,
	}
}

// startRun evaluates the request up-front and replays the collected
// events one step at a time for display pacing. The pauses are
// cosmetic; the decision is already made.
func (m Model) startRun() (tea.Model, tea.Cmd) {
	rng := m.cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var lines []logLine
	evaluator := agent.New(
		agent.WithFleet(m.cfg.Fleet),
		agent.WithRand(rng),
		agent.WithEventHandler(func(ev agent.Event) {
			if line, ok := lineFromEvent(ev); ok {
				lines = append(lines, line)
			}
		}),
	)
	decision := evaluator.Evaluate(m.request())

	m.decision = &decision
	m.lines = lines
	m.revealed = 1
	m.phase = phaseRunning
	if len(m.lines) <= 1 {
		m.phase = phaseDone
	}
	return m, m.stepCmd()
}

// lineFromEvent converts an evaluator event into a displayable row.
func lineFromEvent(ev agent.Event) (logLine, bool) {
	switch ev.Type {
	case agent.EventStageStart:
		return logLine{
			Title:    stageTitle(ev.Stage),
			Decision: ev.Message + "...",
			Status:   "info",
		}, true

	case agent.EventLogged:
		status := "success"
		if ev.Entry.Decision == "TASK REJECTED" || ev.Entry.Decision == "FAILED" {
			status = "error"
		}
		return logLine{
			Title:     ev.Entry.Step,
			Decision:  ev.Entry.Decision,
			Reasoning: ev.Entry.Reasoning,
			Status:    status,
		}, true
	}
	return logLine{}, false
}

func stageTitle(stage agent.Stage) string {
	switch stage {
	case agent.StageEnvCheck:
		return "STEP 1: Environment Analysis"
	case agent.StageRequirement:
		return "STEP 2: Requirement Analysis"
	case agent.StageSelect:
		return "STEP 3: Resource Selection"
	case agent.StagePlan:
		return "STEP 4: Path Planning"
	default:
		return "Agent"
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	leftWidth := m.width * 2 / 5
	rightWidth := m.width - leftWidth - 4
	if leftWidth < 36 {
		leftWidth = 36
	}
	if rightWidth < 40 {
		rightWidth = 40
	}

	form := m.renderForm(leftWidth - 4)
	log := m.renderLog(rightWidth - 4)

	formBorder := m.styles.InactiveBorder
	if m.phase == phaseForm {
		formBorder = m.styles.ActiveBorder
	}
	logBorder := m.styles.InactiveBorder
	if m.phase != phaseForm {
		logBorder = m.styles.ActiveBorder
	}

	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		formBorder.Width(leftWidth).Render(form),
		logBorder.Width(rightWidth).Render(log),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		row,
		m.renderResult(rightWidth),
		m.renderHelpBar(),
	)
}

func (m Model) renderForm(width int) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Task Configuration"))
	b.WriteString("\n\n")

	b.WriteString(m.renderSelect(focusIndustry, "Industry", industries[m.industryIdx].Label))
	b.WriteString("\n")

	b.WriteString(m.focusMarker(focusLocation))
	b.WriteString(m.styles.Label.Render("Target Location: "))
	b.WriteString(m.location.View())
	b.WriteString("\n")

	b.WriteString(m.focusMarker(focusDistance))
	b.WriteString(m.styles.Label.Render("Distance: "))
	b.WriteString(m.renderSlider(width - 24))
	b.WriteString(m.styles.Value.Render(fmt.Sprintf(" %d km", m.distance)))
	b.WriteString("\n")

	b.WriteString(m.renderSelect(focusComplexity, "Complexity", string(complexities[m.complexityIdx])))
	b.WriteString("\n")
	b.WriteString(m.renderSelect(focusOutlook, "Conditions", outlooks[m.outlookIdx].Label))
	b.WriteString("\n\n")

	button := m.styles.Button
	if m.focus == focusRun {
		button = m.styles.ButtonActive
	}
	b.WriteString("  ")
	b.WriteString(button.Render("Execute Agent"))

	return b.String()
}

func (m Model) renderSelect(focus int, label, value string) string {
	display := m.styles.Value.Render(value)
	if m.focus == focus && m.phase == phaseForm {
		display = m.styles.Highlight.Render("< " + value + " >")
	}
	return fmt.Sprintf("%s%s %s", m.focusMarker(focus), m.styles.Label.Render(label+":"), display)
}

func (m Model) focusMarker(focus int) string {
	if m.focus == focus && m.phase == phaseForm {
		return m.styles.Highlight.Render("> ")
	}
	return "  "
}

// renderSlider draws the distance slider track.
func (m Model) renderSlider(width int) string {
	if width < 10 {
		width = 10
	}
	pos := (m.distance - minDistance) * width / (maxDistance - minDistance)
	if pos >= width {
		pos = width - 1
	}

	track := strings.Repeat("-", pos) + "|" + strings.Repeat("-", width-pos-1)
	if m.focus == focusDistance && m.phase == phaseForm {
		return "[" + m.styles.Highlight.Render(track) + "]"
	}
	return "[" + m.styles.Muted.Render(track) + "]"
}

func (m Model) renderLog(width int) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Agent Decision Log"))
	b.WriteString("\n\n")

	if m.phase == phaseForm {
		b.WriteString(m.styles.Muted.Render("Configure a task and press Execute."))
		return b.String()
	}

	for i := 0; i < m.revealed && i < len(m.lines); i++ {
		line := m.lines[i]

		var style lipgloss.Style
		switch line.Status {
		case "success":
			style = m.styles.LogSuccess
		case "error":
			style = m.styles.LogError
		default:
			style = m.styles.LogInfo
		}

		b.WriteString(fmt.Sprintf("%s %s %s",
			style.Render("|"),
			m.styles.Value.Render(line.Title),
			style.Render(line.Decision),
		))
		b.WriteString("\n")
		if line.Reasoning != "" {
			b.WriteString(m.styles.Muted.Render("    " + truncate(line.Reasoning, width-4)))
			b.WriteString("\n")
		}
	}

	if m.phase == phaseRunning {
		b.WriteString(m.styles.Muted.Render("  ..."))
	}

	return b.String()
}

func (m Model) renderResult(width int) string {
	if m.phase != phaseDone || m.decision == nil {
		return ""
	}

	d := m.decision
	var b strings.Builder

	if d.Approved {
		b.WriteString(m.styles.LogSuccess.Render("TASK APPROVED"))
		b.WriteString("\n")
		b.WriteString(m.styles.Label.Render("Resource Assigned: "))
		b.WriteString(m.styles.Value.Render(d.ResourceID))
		b.WriteString("\n")
		b.WriteString(m.styles.Label.Render("Capacity: "))
		b.WriteString(m.styles.Value.Render(
			fmt.Sprintf("%d%% available (required %d%%)", d.AvailableCapacity, d.RequiredCapacity)))
		if d.Plan != nil {
			b.WriteString("\n")
			b.WriteString(m.styles.Label.Render("ETA: "))
			b.WriteString(m.styles.Value.Render(
				fmt.Sprintf("%d minutes over %d phases", d.Plan.TotalMinutes, len(d.Plan.Steps))))
		}
		return m.styles.SuccessBorder.Width(width).Render(b.String())
	}

	b.WriteString(m.styles.LogError.Render("TASK REJECTED"))
	b.WriteString("\n")
	b.WriteString(m.styles.Value.Render(d.Reason))
	return m.styles.ErrorBorder.Width(width).Render(b.String())
}

func (m Model) renderHelpBar() string {
	helpItems := []struct {
		key  string
		desc string
	}{
		{"tab", "next field"},
		{"left/right", "change value"},
		{"enter", "execute"},
		{"r", "reset"},
		{"q", "quit"},
	}

	var parts []string
	for _, item := range helpItems {
		parts = append(parts, fmt.Sprintf("%s %s",
			m.styles.HelpKey.Render(item.key),
			m.styles.HelpText.Render(item.desc),
		))
	}

	return "  " + strings.Join(parts, "  |  ")
}

func truncate(s string, max int) string {
	if max > 3 && len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// Run starts the TUI.
func (m *Model) Run() error {
	p := tea.NewProgram(*m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
