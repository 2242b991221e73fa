package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"libris/internal/config"
	"libris/internal/daemon"
	"libris/internal/daemonrun"
)

const pollInterval = 100 * time.Millisecond

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State    StartState
	Launched bool
	PID      int
}

// ErrDaemonNotRunning indicates no process holds the daemon lock.
var ErrDaemonNotRunning = errors.New("daemon not running")

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// RestartResult captures stop/start outcomes for daemon restart.
type RestartResult struct {
	WasRunning bool
	Stop       StopResult
	Start      StartResult
}

// Launch starts a detached `libris serve` process in its own session so it
// survives the calling shell.
func Launch(executablePath string, opts LaunchOptions) error {
	exe := strings.TrimSpace(executablePath)
	if exe == "" {
		return errors.New("resolve executable: executable path is empty")
	}

	args := []string{"serve"}
	for _, flag := range [][2]string{{"--config", opts.ConfigPath}, {"--log-level", opts.LogLevel}} {
		if value := strings.TrimSpace(flag[1]); value != "" {
			args = append(args, flag[0], value)
		}
	}

	proc := exec.Command(exe, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// waitFor polls the daemon lock until its held state equals running. The
// last probe error, if any, is reported on timeout.
func waitFor(cfg *config.Config, running bool, timeout time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		probe, err := daemon.Probe(cfg)
		if err == nil && probe.Running == running {
			return nil
		}
		select {
		case <-deadline:
			if err != nil {
				return err
			}
			return fmt.Errorf("timeout after %s", timeout)
		case <-ticker.C:
		}
	}
}

// WaitForRunning waits until a daemon holds the lock.
func WaitForRunning(cfg *config.Config, timeout time.Duration) error {
	if err := waitFor(cfg, true, timeout); err != nil {
		return fmt.Errorf("daemon failed to start: %w", err)
	}
	return nil
}

// WaitForShutdown waits until no daemon holds the lock.
func WaitForShutdown(cfg *config.Config, timeout time.Duration) error {
	if err := waitFor(cfg, false, timeout); err != nil {
		return fmt.Errorf("daemon did not stop: %w", err)
	}
	return nil
}

// EnsureStarted launches the daemon unless one already holds the lock.
func EnsureStarted(cfg *config.Config, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	probe, err := daemon.Probe(cfg)
	if err != nil {
		return StartResult{}, err
	}
	if probe.Running {
		return StartResult{State: StartStateAlreadyRunning, PID: daemonrun.ReadPID(cfg)}, nil
	}

	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}
	if err := WaitForRunning(cfg, waitTimeout); err != nil {
		return StartResult{}, err
	}
	return StartResult{State: StartStateStarted, Launched: true, PID: daemonrun.ReadPID(cfg)}, nil
}

// checkTarget rejects pids that cannot belong to a separate daemon process.
func checkTarget(pidPath string, pid int) error {
	switch {
	case pid <= 0:
		return fmt.Errorf("unable to determine daemon pid (pid file: %s)", pidPath)
	case pid == os.Getpid():
		return fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	return nil
}

func signalProcess(pid int, sig os.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("signal daemon process %d: %w", pid, err)
	}
	return nil
}

// ForceKillProcess sends SIGKILL to pid and removes the pid file.
func ForceKillProcess(pidPath string, pid int) (int, error) {
	if err := checkTarget(pidPath, pid); err != nil {
		return 0, err
	}
	if err := signalProcess(pid, syscall.SIGKILL); err != nil {
		return 0, err
	}
	if err := os.Remove(pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove pid file %q: %w", pidPath, err)
	}
	return pid, nil
}

// StopAndTerminate sends SIGTERM to the daemon and force-kills it if it still
// holds the lock after gracePeriod.
func StopAndTerminate(cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	probe, err := daemon.Probe(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !probe.Running {
		return StopResult{}, ErrDaemonNotRunning
	}

	pidPath := daemonrun.PIDPath(cfg)
	pid := daemonrun.ReadPID(cfg)
	if err := checkTarget(pidPath, pid); err != nil {
		return StopResult{}, err
	}

	result := StopResult{PID: pid}
	if err := signalProcess(pid, syscall.SIGTERM); err != nil {
		return result, err
	}
	if WaitForShutdown(cfg, gracePeriod) == nil {
		return result, nil
	}
	if _, err := ForceKillProcess(pidPath, pid); err != nil {
		return result, fmt.Errorf("failed to stop daemon process: %w", err)
	}
	result.ForcedKill = true
	return result, nil
}

// Restart stops the daemon if running, then ensures it is started.
func Restart(cfg *config.Config, executablePath string, opts LaunchOptions, stopGracePeriod, startWaitTimeout time.Duration) (RestartResult, error) {
	stopped, err := StopAndTerminate(cfg, stopGracePeriod)
	wasRunning := err == nil
	if err != nil && !errors.Is(err, ErrDaemonNotRunning) {
		return RestartResult{}, err
	}

	started, err := EnsureStarted(cfg, executablePath, opts, startWaitTimeout)
	if err != nil {
		return RestartResult{}, err
	}
	return RestartResult{WasRunning: wasRunning, Stop: stopped, Start: started}, nil
}
