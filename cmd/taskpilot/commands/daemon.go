package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/taskpilot/internal/agent"
	"github.com/marcus/taskpilot/internal/config"
	"github.com/marcus/taskpilot/internal/history"
	"github.com/marcus/taskpilot/internal/logging"
	"github.com/marcus/taskpilot/internal/scheduler"
)

const pidFileName = "taskpilot.pid"

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background showcase runner",
	Long:  `Start, stop, or check status of the taskpilot background daemon.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the taskpilot daemon as a background process.

The daemon evaluates the configured scenarios on the cron schedule
from the config file and records the decisions to history. The config
file is watched; edits are picked up without a restart.`,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	Long:  `Stop the running taskpilot daemon by sending SIGTERM.`,
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	RunE:  runDaemonStatus,
}

var daemonForegroundFlag bool

func init() {
	daemonStartCmd.Flags().BoolVarP(&daemonForegroundFlag, "foreground", "f", false, "Run in foreground (don't daemonize)")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}

// pidFilePath returns the path to the PID file.
func pidFilePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "taskpilot", pidFileName)
}

// writePidFile writes the current process PID to the PID file.
func writePidFile() error {
	if err := os.MkdirAll(filepath.Dir(pidFilePath()), 0755); err != nil {
		return fmt.Errorf("creating pid dir: %w", err)
	}
	return os.WriteFile(pidFilePath(), []byte(strconv.Itoa(os.Getpid())), 0644)
}

// readPidFile reads the PID from the PID file.
func readPidFile() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

func removePidFile() error {
	return os.Remove(pidFilePath())
}

// isProcessRunning checks if a process with the given PID is running.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds; send signal 0 to check if alive
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

func isDaemonRunning() (bool, int) {
	pid, err := readPidFile()
	if err != nil {
		return false, 0
	}
	return isProcessRunning(pid), pid
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	if running, pid := isDaemonRunning(); running {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Daemon.Schedule == "" {
		return fmt.Errorf("no schedule configured (set daemon.schedule in config)")
	}

	if daemonForegroundFlag {
		return runDaemonLoop(cmd, cfg)
	}

	// Daemonize: start a new process with --foreground flag
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("getting executable: %w", err)
	}

	child := exec.Command(executable, "daemon", "start", "--foreground")
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		child.Args = append(child.Args, "--config", configPath)
	}
	child.Stdout = nil
	child.Stderr = nil
	child.Stdin = nil
	// Detach from parent process group
	child.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := child.Start(); err != nil {
		return fmt.Errorf("starting daemon: %w", err)
	}

	fmt.Printf("daemon started (pid %d)\n", child.Process.Pid)
	return nil
}

func runDaemonLoop(cmd *cobra.Command, cfg *config.Config) error {
	if err := initLogging(cmd, cfg); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logging.Component("daemon")

	if err := writePidFile(); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer func() { _ = removePidFile() }()

	log.Info("daemon starting")

	store, err := openHistory(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received signal %v, shutting down", sig)
		cancel()
	}()

	// Scenario edits land via the config watcher without a restart.
	// The schedule itself is fixed for the life of the process.
	var current atomic.Pointer[config.Config]
	current.Store(cfg)

	runner := scheduler.New(logging.Component("scheduler"))
	if err := runner.Start(cfg.Daemon.Schedule, func() {
		runScheduledScenarios(ctx, current.Load(), store, log)
	}); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer runner.Stop()

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GlobalConfigPath()
	}
	go func() {
		err := scheduler.WatchFile(ctx, configPath, logging.Component("watcher"), func() {
			reloaded, err := config.Load(configPath)
			if err != nil {
				log.Errorf("config reload: %v", err)
				return
			}
			current.Store(reloaded)
			log.Info("config reloaded")
		})
		if err != nil {
			log.Errorf("config watch: %v", err)
		}
	}()

	log.Event("info").Str("schedule", cfg.Daemon.Schedule).Msg("daemon running")

	<-ctx.Done()
	log.Info("daemon stopped")
	return nil
}

// runScheduledScenarios evaluates every configured scenario once.
func runScheduledScenarios(ctx context.Context, cfg *config.Config, store *history.Store, log *logging.Logger) {
	start := time.Now()
	scenarios := cfg.Scenarios()

	evaluator := agent.New(
		agent.WithFleet(cfg.FleetTable()),
		agent.WithLogger(logging.Component("evaluator")),
	)

	var approved int
	for _, sc := range scenarios {
		select {
		case <-ctx.Done():
			log.Info("run cancelled")
			return
		default:
		}

		decision := evaluator.Evaluate(sc.Request())
		if decision.Approved {
			approved++
		}
		recordDecision(store, decision, log)
	}

	log.Event("info").
		Int("scenarios", len(scenarios)).
		Int("approved", approved).
		Dur("elapsed", time.Since(start)).
		Msg("scheduled run complete")
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	running, pid := isDaemonRunning()
	if !running {
		// Check if PID file exists but process is dead
		if _, err := readPidFile(); err == nil {
			_ = removePidFile()
			fmt.Println("daemon not running (stale pid file removed)")
			return nil
		}
		fmt.Println("daemon not running")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending SIGTERM: %w", err)
	}

	fmt.Printf("stopping daemon (pid %d)...\n", pid)

	// Wait for process to exit (with timeout)
	timeout := time.After(10 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("daemon did not stop, sending SIGKILL")
			_ = process.Signal(syscall.SIGKILL)
			_ = removePidFile()
			return nil
		case <-tick.C:
			if !isProcessRunning(pid) {
				fmt.Println("daemon stopped")
				_ = removePidFile()
				return nil
			}
		}
	}
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	running, pid := isDaemonRunning()
	if !running {
		fmt.Println("Status: not running")
		return nil
	}

	fmt.Printf("Status: running\n")
	fmt.Printf("PID: %d\n", pid)

	if cfg, err := loadConfig(cmd); err == nil {
		fmt.Printf("Schedule: %s\n", cfg.Daemon.Schedule)
		fmt.Printf("Scenarios: %d\n", len(cfg.Scenarios()))
		fmt.Printf("History: %s\n", boolWord(cfg.History.Enabled, "enabled", "disabled"))
	}
	fmt.Printf("PID file: %s\n", pidFilePath())
	return nil
}
