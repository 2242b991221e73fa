package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"libris/internal/api"
	"libris/internal/config"
	"libris/internal/library"
	"libris/internal/logging"
	"libris/internal/server"
)

// Daemon serves the library API and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *library.Store
	svc    *api.LibraryService
	server *server.Server

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Bind         string
	DatabasePath string
	LockFilePath string
	Stats        library.Stats
	Health       library.DatabaseHealth
	Err          error
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *library.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		svc:      api.NewLibraryService(store, logger),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	srv, err := server.New(cfg, d.svc, logger, server.WithStatus(d.apiStatus))
	if err != nil {
		return nil, fmt.Errorf("build api server: %w", err)
	}
	d.server = srv
	return d, nil
}

// Start acquires the daemon lock and starts serving HTTP.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another libris daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("libris daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()),
		logging.String("address", d.server.Addr()))
	return nil
}

// Stop stops serving and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("libris daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the address the API server is bound to while running.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Bind:         d.server.Addr(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if status.Bind == "" {
		status.Bind = d.cfg.Paths.APIBind
	}
	stats, err := d.store.Stats(ctx)
	if err != nil {
		status.Err = err
	}
	status.Stats = stats
	health, err := d.store.CheckHealth(ctx)
	if err != nil && status.Err == nil {
		status.Err = err
	}
	status.Health = health
	return status
}

func (d *Daemon) apiStatus(ctx context.Context) api.DaemonStatus {
	status := d.Status(ctx)
	if status.Err != nil {
		logging.WithContext(ctx, d.logger).Warn("status collection incomplete", logging.Error(status.Err))
	}
	return api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		Bind:         status.Bind,
		Stats:        api.FromStats(status.Stats),
		Health:       api.FromHealth(status.Health),
	}
}

// ProbeResult describes whether a daemon holds the lock for a data directory.
type ProbeResult struct {
	Running  bool
	LockPath string
}

// Probe checks the daemon lock without disturbing a running instance.
func Probe(cfg *config.Config) (ProbeResult, error) {
	if cfg == nil {
		return ProbeResult{}, errors.New("probe requires config")
	}
	result := ProbeResult{LockPath: cfg.LockPath()}
	if _, err := os.Stat(result.LockPath); errors.Is(err, os.ErrNotExist) {
		return result, nil
	}

	lock := flock.New(result.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("probe lock: %w", err)
	}
	if !ok {
		result.Running = true
		return result, nil
	}
	if err := lock.Unlock(); err != nil {
		return result, fmt.Errorf("release probe lock: %w", err)
	}
	return result, nil
}
