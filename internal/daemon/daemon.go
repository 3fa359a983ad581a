// Package daemon runs the single worker loop that drains the job queue.
// One job executes at a time; inter-job parallelism comes from jobs
// enqueueing further jobs, never from threads.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"zcomx/internal/config"
	"zcomx/internal/logging"
	"zcomx/internal/queue"
	"zcomx/internal/shellutil"
)

const (
	defaultPollInterval = 5 * time.Second
	lockBackoff         = time.Second
)

// Daemon owns the worker loop and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	store  *queue.Store
	exec   shellutil.Executor
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// New constructs a daemon. A nil executor defaults to shellutil.Runner; a
// nil logger discards output.
func New(cfg *config.Config, store *queue.Store, exec shellutil.Executor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and queue store")
	}
	if exec == nil {
		exec = shellutil.Runner{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "zcomxd.lock")
	return &Daemon{
		cfg:      cfg,
		store:    store,
		exec:     exec,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Running reports whether the worker loop is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

func (d *Daemon) pollInterval() time.Duration {
	if d.cfg.Queue.PollIntervalSeconds > 0 {
		return time.Duration(d.cfg.Queue.PollIntervalSeconds) * time.Second
	}
	return defaultPollInterval
}

func (d *Daemon) staleAfter() time.Duration {
	return time.Duration(d.cfg.Queue.LockStaleSeconds) * time.Second
}

// Run drains the queue until ctx is cancelled. It blocks; callers run it
// in the main goroutine. The PID file is held for the daemon's whole
// lifetime so AddJob can signal an idle daemon, not only a busy one. A
// stale leftover lock aborts startup so an operator can inspect the
// stuck process.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !ok {
		return errors.New("another zcomxd instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release daemon lock", logging.Error(err))
		}
	}()

	// Register the wake handler before the PID file exists: once the
	// pid is published, AddJob may signal at any moment.
	wake := make(chan os.Signal, 1)
	signal.Notify(wake, unix.SIGUSR1)
	defer signal.Stop(wake)

	if err := d.acquireQueueLock(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer func() {
		if err := queue.Unlock(d.cfg.Paths.PIDFile); err != nil {
			d.logger.Warn("release queue lock", logging.Error(err))
		}
	}()

	d.logger.Info("daemon started",
		logging.String("pid_file", d.cfg.Paths.PIDFile),
		logging.Duration("poll_interval", d.pollInterval()),
	)

	timer := time.NewTimer(d.pollInterval())
	defer timer.Stop()

	for {
		if err := queue.TouchLock(d.cfg.Paths.PIDFile); err != nil {
			d.logger.Warn("touch queue lock", logging.Error(err))
		}
		if err := d.drain(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			d.logger.Info("daemon stopping")
			return nil
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(d.pollInterval())
		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopping")
			return nil
		case <-wake:
		case <-timer.C:
		}
	}
}

// acquireQueueLock claims the PID file, waiting out a fresh foreign lock
// (a still-running predecessor mid-shutdown). A stale lock is fatal.
func (d *Daemon) acquireQueueLock(ctx context.Context) error {
	for {
		err := queue.Lock(d.cfg.Paths.PIDFile, d.staleAfter())
		switch {
		case err == nil:
			return nil
		case errors.Is(err, queue.ErrQueueLockedStale):
			d.logger.Error("queue lock is stale, refusing to steal it",
				logging.String("pid_file", d.cfg.Paths.PIDFile),
				logging.Error(err),
			)
			return err
		case errors.Is(err, queue.ErrQueueLocked):
			d.logger.Debug("queue locked, waiting")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(lockBackoff):
			}
		default:
			return err
		}
	}
}

// drain processes jobs until the queue is empty or ctx is cancelled.
func (d *Daemon) drain(ctx context.Context) error {
	for ctx.Err() == nil {
		err := d.processNext(ctx)
		switch {
		case err == nil:
			continue
		case errors.Is(err, queue.ErrQueueEmpty):
			return nil
		default:
			return err
		}
	}
	return nil
}

// processNext runs the top job. Job failure is not a loop failure: the
// job moves to history and processing continues.
func (d *Daemon) processNext(ctx context.Context) error {
	job, err := d.store.TopJob(ctx)
	if err != nil {
		return err
	}
	if err := d.store.SetJobStatus(ctx, job, queue.StatusInProgress); err != nil {
		return err
	}
	if err := queue.TouchLock(d.cfg.Paths.PIDFile); err != nil {
		d.logger.Warn("touch queue lock", logging.Error(err))
	}

	jobLogger := d.logger.With(logging.Int64(logging.FieldJobID, job.ID))
	jobLogger.Info("job started", logging.String(logging.FieldCommand, job.Command))
	started := time.Now()

	_, runErr := d.store.RunJob(ctx, d.exec, job)
	if runErr != nil {
		jobLogger.Warn("job failed",
			logging.String(logging.FieldCommand, job.Command),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(runErr),
		)
		if err := d.store.MoveToHistory(ctx, job, runErr.Error()); err != nil {
			return err
		}
		return nil
	}

	jobLogger.Info("job finished", logging.Duration("elapsed", time.Since(started)))
	return d.store.RemoveJob(ctx, job)
}
