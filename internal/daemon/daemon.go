package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"gotranscribe/internal/config"
	"gotranscribe/internal/deps"
	"gotranscribe/internal/history"
	"gotranscribe/internal/logging"
	"gotranscribe/internal/pipeline"
)

// Daemon coordinates the API server and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	pipeline *pipeline.Pipeline
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	active  atomic.Int64
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	Address       string
	HistoryDBPath string
	LockFilePath  string
	ActiveJobs    int64
	Codec         string
	Counts        map[history.Status]int
	Dependencies  []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *history.Store, pipe *pipeline.Pipeline, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || pipe == nil {
		return nil, errors.New("daemon requires config, history store, and pipeline")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		pipeline: pipe,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, recovers stale jobs, and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(d.cfg.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another gotranscribe daemon instance is already running")
	}

	if n, err := d.store.FailStale(ctx); err != nil {
		d.logger.Warn("failed to recover interrupted jobs", logging.Error(err))
	} else if n > 0 {
		d.logger.Info("marked interrupted jobs as failed", logging.Int64("count", n))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("gotranscribe daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("gotranscribe daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Address returns the API listen address once started.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Handler exposes the API routes, primarily for tests.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		Address:       d.api.address(),
		HistoryDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		ActiveJobs:    d.active.Load(),
		Codec:         d.pipeline.CodecState().String(),
		Dependencies:  deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
	if counts, err := d.store.Counts(ctx); err == nil {
		status.Counts = counts
	} else {
		d.logger.Warn("history counts unavailable", logging.Error(err))
	}
	return status
}

// IsRunning reports whether another process holds the daemon lock at lockPath.
func IsRunning(lockPath string) (bool, error) {
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if ok {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}
