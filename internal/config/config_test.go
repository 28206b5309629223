package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marcus/taskpilot/internal/agent"
	"github.com/marcus/taskpilot/internal/fleet"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level = %q, want info", cfg.Logging.Level)
	}
	if cfg.History.Enabled {
		t.Error("history must be disabled by default")
	}
	if cfg.Demo.PaceMS != 600 {
		t.Errorf("demo.pace_ms = %d, want 600", cfg.Demo.PaceMS)
	}
	if cfg.Daemon.Schedule == "" {
		t.Error("daemon.schedule default missing")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskpilot.yaml")
	content := `
logging:
  level: debug
  format: json
history:
  enabled: true
  path: /tmp/test.db
demo:
  pace_ms: 0
daemon:
  schedule: "0 * * * *"
  scenarios:
    - name: Night survey
      task_type: drone_mission
      resource_type: drone
      location: North Field
      distance: 12
      complexity: low
fleet:
  drone:
    - id: D-900
      capacity: 70
      status: available
      location: Hangar-3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !cfg.History.Enabled || cfg.History.Path != "/tmp/test.db" {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Demo.PaceMS != 0 {
		t.Errorf("pace_ms = %d, want 0", cfg.Demo.PaceMS)
	}

	scenarios := cfg.Scenarios()
	if len(scenarios) != 1 || scenarios[0].Name != "Night survey" {
		t.Fatalf("scenarios = %+v", scenarios)
	}
	req := scenarios[0].Request()
	if req.Distance != 12 || req.Complexity != agent.ComplexityLow {
		t.Errorf("request = %+v", req)
	}

	table := cfg.FleetTable()
	drones := table.Resources("drone")
	if len(drones) != 1 || drones[0].ID != "D-900" {
		t.Errorf("drone override not applied: %+v", drones)
	}
	// Untouched types keep the built-in table.
	if len(table.Resources("vehicle")) != len(fleet.Default().Resources("vehicle")) {
		t.Error("vehicle table should be the default")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", "logging:\n  level: loud\n"},
		{"negative pace", "demo:\n  pace_ms: -5\n"},
		{"capacity out of range", "fleet:\n  drone:\n    - id: D-1\n      capacity: 150\n"},
		{"missing fleet id", "fleet:\n  drone:\n    - capacity: 50\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "taskpilot.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDefaultScenariosCoverThreeIndustries(t *testing.T) {
	scenarios := DefaultScenarios()
	if len(scenarios) != 3 {
		t.Fatalf("got %d scenarios, want 3", len(scenarios))
	}
	types := map[string]bool{}
	for _, s := range scenarios {
		types[s.TaskType] = true
	}
	for _, want := range []string{"drone_mission", "delivery_route", "production_job"} {
		if !types[want] {
			t.Errorf("missing scenario task type %s", want)
		}
	}
}

func TestFleetEntryDefaultStatus(t *testing.T) {
	cfg := &Config{Fleet: map[string][]FleetEntry{
		"drone": {{ID: "D-1", Capacity: 80}},
	}}
	table := cfg.FleetTable()
	if got := table.Resources("drone")[0].Status; got != fleet.StatusAvailable {
		t.Errorf("default status = %q, want available", got)
	}
}
