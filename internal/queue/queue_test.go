package queue_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"zcomx/internal/queue"
	"zcomx/internal/shellutil"
	"zcomx/internal/testsupport"
)

func openQueue(t *testing.T) *queue.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	q, err := queue.Open(s.DB(), cfg, nil)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	return q
}

func addJob(t *testing.T, q *queue.Store, command string, priority int) *queue.Job {
	t.Helper()
	job, err := q.AddJob(context.Background(), &queue.Job{Command: command, Priority: priority})
	if err != nil {
		t.Fatalf("AddJob(%q): %v", command, err)
	}
	return job
}

func TestAddJobDefaults(t *testing.T) {
	q := openQueue(t)

	job := addJob(t, q, "zcomx search-prefetch", 1)
	if job.ID == 0 {
		t.Fatal("expected job id")
	}
	if job.Status != queue.StatusActive {
		t.Fatalf("expected active default, got %q", job.Status)
	}
	if job.Start.IsZero() || job.QueuedTime.IsZero() {
		t.Fatal("expected start and queued_time defaults")
	}
}

func TestAddJobRejectsInvalidStatus(t *testing.T) {
	q := openQueue(t)

	_, err := q.AddJob(context.Background(), &queue.Job{Command: "zcomx search-prefetch", Status: "x"})
	if !errors.Is(err, queue.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTopJobOrdering(t *testing.T) {
	q := openQueue(t)
	ctx := context.Background()

	low := addJob(t, q, "zcomx purge-torrents", mustPriority(t, "purge_torrents"))
	high := addJob(t, q, "zcomx create-cbz --book-id 1", mustPriority(t, "create_cbz"))
	mid := addJob(t, q, "zcomx fileshare-book 1", mustPriority(t, "fileshare_book"))
	highLater := addJob(t, q, "zcomx create-cbz --book-id 2", mustPriority(t, "create_cbz"))

	want := []int64{high.ID, highLater.ID, mid.ID, low.ID}
	for _, wantID := range want {
		top, err := q.TopJob(ctx)
		if err != nil {
			t.Fatalf("TopJob: %v", err)
		}
		if top.ID != wantID {
			t.Fatalf("expected job %d next, got %d (%s)", wantID, top.ID, top.Command)
		}
		if err := q.RemoveJob(ctx, top); err != nil {
			t.Fatalf("RemoveJob: %v", err)
		}
	}
	if _, err := q.TopJob(ctx); !errors.Is(err, queue.ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
}

func TestTopJobSkipsFutureAndDisabled(t *testing.T) {
	q := openQueue(t)
	ctx := context.Background()

	future, err := q.AddJob(ctx, &queue.Job{
		Command:  "zcomx log-downloads",
		Priority: 20,
		Start:    time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("AddJob future: %v", err)
	}
	disabled, err := q.AddJob(ctx, &queue.Job{
		Command:  "zcomx log-downloads",
		Priority: 20,
		Status:   queue.StatusDisabled,
	})
	if err != nil {
		t.Fatalf("AddJob disabled: %v", err)
	}
	runnable := addJob(t, q, "zcomx log-downloads", 3)

	top, err := q.TopJob(ctx)
	if err != nil {
		t.Fatalf("TopJob: %v", err)
	}
	if top.ID != runnable.ID {
		t.Fatalf("expected runnable job %d, got %d", runnable.ID, top.ID)
	}
	_ = future
	_ = disabled
}

func TestSetJobStatus(t *testing.T) {
	q := openQueue(t)
	ctx := context.Background()

	job := addJob(t, q, "zcomx log-downloads", 3)
	if err := q.SetJobStatus(ctx, job, queue.StatusInProgress); err != nil {
		t.Fatalf("SetJobStatus: %v", err)
	}
	if _, err := q.TopJob(ctx); !errors.Is(err, queue.ErrQueueEmpty) {
		t.Fatalf("in-progress job must not be selected, got %v", err)
	}

	if err := q.SetJobStatus(ctx, job, "bogus"); !errors.Is(err, queue.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestMoveToHistory(t *testing.T) {
	q := openQueue(t)
	ctx := context.Background()

	job := addJob(t, q, "zcomx create-cbz --book-id 7", 19)
	if err := q.MoveToHistory(ctx, job, "archiver exited 2"); err != nil {
		t.Fatalf("MoveToHistory: %v", err)
	}
	if _, err := q.TopJob(ctx); !errors.Is(err, queue.ErrQueueEmpty) {
		t.Fatalf("expected empty queue after move, got %v", err)
	}

	entries, err := q.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.JobID != job.ID || entry.ErrorMessage != "archiver exited 2" {
		t.Fatalf("unexpected history entry: %#v", entry)
	}
}

func TestQueueStats(t *testing.T) {
	q := openQueue(t)
	ctx := context.Background()

	addJob(t, q, "zcomx log-downloads", 3)
	addJob(t, q, "zcomx purge-torrents", 0)
	if _, err := q.AddJob(ctx, &queue.Job{Command: "zcomx search-prefetch", Status: queue.StatusDisabled}); err != nil {
		t.Fatalf("AddJob disabled: %v", err)
	}

	stats, err := q.QueueStats(ctx)
	if err != nil {
		t.Fatalf("QueueStats: %v", err)
	}
	if stats.Total != 3 || stats.Active != 2 || stats.Disabled != 1 || stats.InProgress != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPriorityForCoversReleasePath(t *testing.T) {
	cbz := mustPriority(t, "create_cbz")
	fileshare := mustPriority(t, "fileshare_book")
	purge := mustPriority(t, "purge_torrents")
	if !(cbz > fileshare && fileshare > purge) {
		t.Fatalf("release path must outrank housekeeping: cbz=%d fileshare=%d purge=%d", cbz, fileshare, purge)
	}
	if _, err := queue.PriorityFor("no_such_command"); !errors.Is(err, queue.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func mustPriority(t *testing.T, command string) int {
	t.Helper()
	priority, err := queue.PriorityFor(command)
	if err != nil {
		t.Fatalf("PriorityFor(%q): %v", command, err)
	}
	return priority
}

func TestLockLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zcomxd.pid")

	if err := queue.Lock(path, time.Hour); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := queue.Lock(path, time.Hour); !errors.Is(err, queue.ErrQueueLocked) {
		t.Fatalf("expected ErrQueueLocked, got %v", err)
	}

	pid, err := queue.ReadLockPID(path)
	if err != nil {
		t.Fatalf("ReadLockPID: %v", err)
	}
	if pid != os.Getpid() {
		t.Fatalf("expected pid %d, got %d", os.Getpid(), pid)
	}

	if err := queue.Unlock(path); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := queue.Unlock(path); err != nil {
		t.Fatalf("Unlock on missing file: %v", err)
	}
	if err := queue.Lock(path, time.Hour); err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
}

func TestLockStaleDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zcomxd.pid")

	if err := queue.Lock(path, 0); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	if err := queue.Lock(path, time.Hour); !errors.Is(err, queue.ErrQueueLockedStale) {
		t.Fatalf("expected ErrQueueLockedStale, got %v", err)
	}
	// Without a stale threshold the same file reads as simply locked.
	if err := queue.Lock(path, 0); !errors.Is(err, queue.ErrQueueLocked) {
		t.Fatalf("expected ErrQueueLocked, got %v", err)
	}
}

func TestTouchLockRefreshesTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zcomxd.pid")

	if err := queue.Lock(path, 0); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if err := queue.TouchLock(path); err != nil {
		t.Fatalf("TouchLock: %v", err)
	}
	if err := queue.Lock(path, time.Hour); !errors.Is(err, queue.ErrQueueLocked) {
		t.Fatalf("touched lock must not read stale, got %v", err)
	}
	pid, err := queue.ReadLockPID(path)
	if err != nil || pid != os.Getpid() {
		t.Fatalf("pid survived touch: pid=%d err=%v", pid, err)
	}
}

func TestRunJobResolvesCLIBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("zcomx", `echo "ran $@"`+"\n"))
	s := testsupport.MustOpenStore(t, cfg)
	q, err := queue.Open(s.DB(), cfg, nil)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	ctx := context.Background()

	job, err := q.AddJob(ctx, &queue.Job{Command: "zcomx log-downloads --limit '10'"})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	res, err := q.RunJob(ctx, shellutil.Runner{}, job)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != "ran log-downloads --limit 10" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRunJobReportsExitError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("zcomx", "echo boom >&2\nexit 3\n"))
	s := testsupport.MustOpenStore(t, cfg)
	q, err := queue.Open(s.DB(), cfg, nil)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	ctx := context.Background()

	job, err := q.AddJob(ctx, &queue.Job{Command: "zcomx create-cbz --book-id 1"})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	_, err = q.RunJob(ctx, shellutil.Runner{}, job)
	var exitErr *shellutil.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.ExitCode != 3 || !strings.Contains(exitErr.Stderr, "boom") {
		t.Fatalf("unexpected exit error: %+v", exitErr)
	}
}
