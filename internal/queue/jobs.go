package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"zcomx/internal/logging"
)

const jobColumns = "id, command, priority, start, status, queued_time, ignorable"

// AddJob inserts a job with defaults applied, then signals the daemon.
// A missing daemon PID file is logged and ignored so enqueueing works
// whether or not the daemon is running.
func (s *Store) AddJob(ctx context.Context, job *Job) (*Job, error) {
	if job == nil {
		return nil, errors.New("job is nil")
	}
	if job.Command == "" {
		return nil, errors.New("job command is empty")
	}
	if job.Status == "" {
		job.Status = StatusActive
	}
	if _, ok := statusSet[job.Status]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, job.Status)
	}
	now := time.Now().UTC()
	if job.Start.IsZero() {
		job.Start = now
	}
	if job.QueuedTime.IsZero() {
		job.QueuedTime = now
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO job (command, priority, start, status, queued_time, ignorable)
         VALUES (?, ?, ?, ?, ?, ?)`,
		job.Command,
		job.Priority,
		formatTime(job.Start),
		string(job.Status),
		formatTime(job.QueuedTime),
		boolToInt(job.Ignorable),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	job.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := s.SignalDaemon(); err != nil {
		s.logger.Debug("daemon not signaled",
			logging.Error(err),
			logging.Int64(logging.FieldJobID, job.ID))
	}
	return job, nil
}

// TopJob returns the active job with the highest priority whose start time
// has passed. Ties break by insertion id, oldest first. Returns
// ErrQueueEmpty when nothing is runnable.
func (s *Store) TopJob(ctx context.Context) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+jobColumns+` FROM job
         WHERE status = ? AND start <= ?
         ORDER BY priority DESC, id ASC LIMIT 1`,
		string(StatusActive),
		formatTime(time.Now().UTC()),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("select top job: %w", err)
	}
	return job, nil
}

// JobGenerator returns a closure yielding successive top jobs until the
// queue is empty. Each call re-selects, so jobs enqueued mid-iteration are
// picked up.
func (s *Store) JobGenerator(ctx context.Context) func() (*Job, error) {
	return func() (*Job, error) {
		return s.TopJob(ctx)
	}
}

// JobByID fetches a single job row.
func (s *Store) JobByID(ctx context.Context, id int64) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM job WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("select job %d: %w", id, err)
	}
	return job, nil
}

// SetJobStatus validates and persists a status change.
func (s *Store) SetJobStatus(ctx context.Context, job *Job, status Status) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if _, err := s.execWithRetry(ctx, `UPDATE job SET status = ? WHERE id = ?`, string(status), job.ID); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	job.Status = status
	return nil
}

// RemoveJob deletes a job row. Used on successful completion.
func (s *Store) RemoveJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if _, err := s.execWithRetry(ctx, `DELETE FROM job WHERE id = ?`, job.ID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// MoveToHistory records a failed job in job_history and removes it from the
// live queue.
func (s *Store) MoveToHistory(ctx context.Context, job *Job, errorMessage string) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO job_history (job_id, command, priority, start, queued_time, error_message, failed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Command,
		job.Priority,
		formatTime(job.Start),
		formatTime(job.QueuedTime),
		errorMessage,
		formatTime(time.Now().UTC()),
	); err != nil {
		return fmt.Errorf("insert job history: %w", err)
	}
	return s.RemoveJob(ctx, job)
}

// ListJobs returns all queued jobs ordered the way the daemon will run
// them: priority descending, then oldest first.
func (s *Store) ListJobs(ctx context.Context) ([]*Job, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+jobColumns+` FROM job ORDER BY priority DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// History returns the most recent failed jobs, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]*HistoryEntry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, job_id, command, priority, start, queued_time, error_message, failed_at
         FROM job_history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list job history: %w", err)
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var (
			entry      HistoryEntry
			start      string
			queuedTime string
			failedAt   string
		)
		if err := rows.Scan(&entry.ID, &entry.JobID, &entry.Command, &entry.Priority, &start, &queuedTime, &entry.ErrorMessage, &failedAt); err != nil {
			return nil, err
		}
		entry.Start = mustParseTime(start)
		entry.QueuedTime = mustParseTime(queuedTime)
		entry.FailedAt = mustParseTime(failedAt)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// QueueStats counts jobs per status.
func (s *Store) QueueStats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM job GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch Status(status) {
		case StatusActive:
			stats.Active = count
		case StatusDisabled:
			stats.Disabled = count
		case StatusInProgress:
			stats.InProgress = count
		}
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job        Job
		status     string
		start      string
		queuedTime string
		ignorable  int
	)
	if err := row.Scan(&job.ID, &job.Command, &job.Priority, &start, &status, &queuedTime, &ignorable); err != nil {
		return nil, err
	}
	job.Status = Status(status)
	job.Start = mustParseTime(start)
	job.QueuedTime = mustParseTime(queuedTime)
	job.Ignorable = ignorable != 0
	return &job, nil
}

func mustParseTime(value string) time.Time {
	t, err := parseTimeString(value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
