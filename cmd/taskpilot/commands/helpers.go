package commands

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/taskpilot/internal/config"
	"github.com/marcus/taskpilot/internal/logging"
)

// loadConfig loads configuration honoring the global --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// initLogging initializes the logging subsystem from config, bumping
// the level to debug when --verbose is set.
func initLogging(cmd *cobra.Command, cfg *config.Config) error {
	level := cfg.Logging.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return logging.Init(logging.Config{
		Level:         level,
		Path:          cfg.Logging.Path,
		Format:        cfg.Logging.Format,
		RetentionDays: cfg.Logging.RetentionDays,
	})
}

// newRand returns a seeded source when seed is non-zero, otherwise a
// time-seeded one.
func newRand(seed int64) *rand.Rand {
	if seed != 0 {
		return rand.New(rand.NewSource(seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// pace returns the configured demo delay, with flag override.
func pace(cmd *cobra.Command, cfg *config.Config) time.Duration {
	if cmd.Flags().Changed("pace") {
		ms, _ := cmd.Flags().GetInt("pace")
		if ms < 0 {
			ms = 0
		}
		return time.Duration(ms) * time.Millisecond
	}
	return time.Duration(cfg.Demo.PaceMS) * time.Millisecond
}

func boolWord(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

func percent(n int) string {
	return fmt.Sprintf("%d%%", n)
}
