package daemonctl

import (
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"libris/internal/config"
	"libris/internal/daemonrun"
	"libris/internal/testsupport"
)

// holdLock simulates a running daemon by taking the lock from this process.
func holdLock(t *testing.T, cfg *config.Config) *flock.Flock {
	t.Helper()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })
	return lock
}

func writePID(t *testing.T, cfg *config.Config, pid int) {
	t.Helper()
	if err := os.WriteFile(daemonrun.PIDPath(cfg), []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
}

func TestLaunchRequiresExecutable(t *testing.T) {
	if err := Launch("  ", LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty executable")
	}
}

func TestEnsureStartedAlreadyRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	holdLock(t, cfg)
	writePID(t, cfg, 4242)

	// An empty executable would fail if a launch were attempted.
	result, err := EnsureStarted(cfg, "", LaunchOptions{}, time.Second)
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if result.State != StartStateAlreadyRunning || result.Launched {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.PID != 4242 {
		t.Fatalf("expected pid 4242, got %d", result.PID)
	}
}

func TestEnsureStartedLaunchFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := EnsureStarted(cfg, "", LaunchOptions{}, time.Second); err == nil {
		t.Fatal("expected launch error without executable")
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := StopAndTerminate(cfg, time.Second); !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestStopRefusesCurrentProcess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	holdLock(t, cfg)
	writePID(t, cfg, os.Getpid())

	if _, err := StopAndTerminate(cfg, time.Second); err == nil {
		t.Fatal("expected refusal to signal the current process")
	}
}

func TestStopWithoutPIDFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	holdLock(t, cfg)

	if _, err := StopAndTerminate(cfg, time.Second); err == nil {
		t.Fatal("expected error when pid is unknown")
	}
}

func TestWaitForShutdown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lock := holdLock(t, cfg)

	if err := WaitForShutdown(cfg, 200*time.Millisecond); err == nil {
		t.Fatal("expected timeout while lock is held")
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = lock.Unlock()
	}()
	if err := WaitForShutdown(cfg, 3*time.Second); err != nil {
		t.Fatalf("WaitForShutdown: %v", err)
	}
	if err := WaitForRunning(cfg, 200*time.Millisecond); err == nil {
		t.Fatal("expected WaitForRunning to time out once released")
	}
}

func TestForceKillProcessGuards(t *testing.T) {
	if _, err := ForceKillProcess("pid", 0); err == nil {
		t.Fatal("expected error for unknown pid")
	}
	if _, err := ForceKillProcess("pid", os.Getpid()); err == nil {
		t.Fatal("expected refusal to kill current process")
	}
}
