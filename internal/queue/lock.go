package queue

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"zcomx/internal/fileutil"
)

// Lock claims the queue lock by creating the PID file exclusively. If the
// file already exists the lock is refused: ErrQueueLockedStale when the
// file's mtime is older than staleAfter (and staleAfter > 0), otherwise
// ErrQueueLocked.
func Lock(path string, staleAfter time.Duration) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		now := time.Now().UTC().Format(time.RFC3339)
		content := fmt.Sprintf("pid: %d\nstart: %s\nlast: %s\n", os.Getpid(), now, now)
		if _, werr := f.WriteString(content); werr != nil {
			f.Close()
			os.Remove(path)
			return fmt.Errorf("write lock file: %w", werr)
		}
		return f.Close()
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create lock file: %w", err)
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		// Lock vanished between create and stat. Treat as held.
		return ErrQueueLocked
	}
	if staleAfter > 0 && time.Since(info.ModTime()) > staleAfter {
		return ErrQueueLockedStale
	}
	return ErrQueueLocked
}

// TouchLock refreshes the lock's last-activity timestamp, rewriting the
// file atomically so readers never see a partial write.
func TouchLock(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read lock file: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(line, "last:") {
			lines[i] = "last: " + now
			replaced = true
		}
	}
	if !replaced {
		lines = append(lines, "last: "+now)
	}
	return fileutil.WriteFileAtomic(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

// Unlock releases the queue lock. A missing file is not an error.
func Unlock(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

// ReadLockPID parses the pid entry out of a lock file.
func ReadLockPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(key) != "pid" {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("parse lock pid: %w", err)
		}
		return pid, nil
	}
	return 0, fmt.Errorf("lock file %s has no pid entry", path)
}
