// Package config handles loading and validating taskpilot
// configuration. Supports YAML config files and TASKPILOT_* environment
// variable overrides; all defaults work with no file present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/marcus/taskpilot/internal/agent"
	"github.com/marcus/taskpilot/internal/environment"
	"github.com/marcus/taskpilot/internal/fleet"
)

// Config holds all taskpilot configuration.
type Config struct {
	Logging LoggingConfig           `mapstructure:"logging"`
	History HistoryConfig           `mapstructure:"history"`
	Daemon  DaemonConfig            `mapstructure:"daemon"`
	Demo    DemoConfig              `mapstructure:"demo"`
	Fleet   map[string][]FleetEntry `mapstructure:"fleet"`
}

// LoggingConfig mirrors logging.Config for file-based configuration.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Path          string `mapstructure:"path"`
	Format        string `mapstructure:"format"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// HistoryConfig controls the optional decision history store. Disabled
// by default so a plain run writes no files.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DaemonConfig controls the scheduled showcase runner.
type DaemonConfig struct {
	Schedule  string     `mapstructure:"schedule"` // standard cron expression
	Scenarios []Scenario `mapstructure:"scenarios"`
}

// DemoConfig controls console demo pacing.
type DemoConfig struct {
	PaceMS int `mapstructure:"pace_ms"`
}

// FleetEntry is one resource row in a fleet override table.
type FleetEntry struct {
	ID       string `mapstructure:"id"`
	Capacity int    `mapstructure:"capacity"`
	Status   string `mapstructure:"status"`
	Location string `mapstructure:"location"`
}

// Scenario is a configured task request for demo and daemon runs.
type Scenario struct {
	Name          string  `mapstructure:"name"`
	Industry      string  `mapstructure:"industry"`
	TaskType      string  `mapstructure:"task_type"`
	ResourceType  string  `mapstructure:"resource_type"`
	Location      string  `mapstructure:"location"`
	Distance      float64 `mapstructure:"distance"`
	Duration      int     `mapstructure:"duration"`
	Complexity    string  `mapstructure:"complexity"`
	StartLocation string  `mapstructure:"start_location"`
	EndLocation   string  `mapstructure:"end_location"`
}

// Request converts a scenario into an evaluator task request.
func (s Scenario) Request() agent.TaskRequest {
	return agent.TaskRequest{
		Industry:      s.Industry,
		TaskType:      s.TaskType,
		ResourceType:  s.ResourceType,
		Location:      s.Location,
		Distance:      s.Distance,
		Duration:      s.Duration,
		Complexity:    agent.Complexity(s.Complexity),
		StartLocation: s.StartLocation,
		EndLocation:   s.EndLocation,
	}
}

// DefaultScenarios returns the three canned multi-industry examples
// used by the demo command and as the daemon default.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:          "Autonomous drone operations",
			Industry:      "drone_operations",
			TaskType:      environment.TaskDroneMission,
			ResourceType:  "drone",
			Location:      "Solar Farm Alpha",
			Distance:      25,
			Complexity:    "medium",
			StartLocation: "Base-A",
			EndLocation:   "Solar Farm Alpha",
		},
		{
			Name:          "Delivery route planning",
			Industry:      "logistics",
			TaskType:      environment.TaskDeliveryRoute,
			ResourceType:  "vehicle",
			Location:      "Downtown District",
			Distance:      15,
			Complexity:    "high",
			StartLocation: "Warehouse-1",
			EndLocation:   "Customer Location",
		},
		{
			Name:          "Production scheduling",
			Industry:      "manufacturing",
			TaskType:      environment.TaskProductionJob,
			ResourceType:  "machine",
			Location:      "Factory Floor A",
			Duration:      45,
			Complexity:    "low",
			StartLocation: "Station-A",
			EndLocation:   "Station-B",
		},
	}
}

// GlobalConfigPath returns the default config file location.
func GlobalConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taskpilot", "taskpilot.yaml")
}

// DefaultHistoryPath returns the default history database location.
func DefaultHistoryPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "taskpilot", "taskpilot.db")
}

// Load reads configuration from the given file (or the global path when
// empty) and the environment. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigFile(GlobalConfigPath())
	}

	v.SetEnvPrefix("TASKPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.retention_days", 7)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", DefaultHistoryPath())
	v.SetDefault("daemon.schedule", "*/5 * * * *")
	v.SetDefault("demo.pace_ms", 600)
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	if c.Demo.PaceMS < 0 {
		return fmt.Errorf("demo.pace_ms must be >= 0")
	}
	for resourceType, entries := range c.Fleet {
		for _, e := range entries {
			if e.ID == "" {
				return fmt.Errorf("fleet.%s: entry missing id", resourceType)
			}
			if e.Capacity < 0 || e.Capacity > 100 {
				return fmt.Errorf("fleet.%s.%s: capacity %d out of [0,100]", resourceType, e.ID, e.Capacity)
			}
		}
	}
	return nil
}

// FleetTable builds the resource table: the built-in demo fleet with
// any configured per-type overrides applied on top.
func (c *Config) FleetTable() fleet.Table {
	table := fleet.Default()
	for resourceType, entries := range c.Fleet {
		rs := make([]fleet.Resource, 0, len(entries))
		for _, e := range entries {
			status := e.Status
			if status == "" {
				status = fleet.StatusAvailable
			}
			rs = append(rs, fleet.Resource{
				ID:       e.ID,
				Capacity: e.Capacity,
				Status:   status,
				Location: e.Location,
			})
		}
		table[resourceType] = rs
	}
	return table
}

// Scenarios returns the configured daemon scenarios, falling back to
// the canned defaults.
func (c *Config) Scenarios() []Scenario {
	if len(c.Daemon.Scenarios) > 0 {
		return c.Daemon.Scenarios
	}
	return DefaultScenarios()
}
