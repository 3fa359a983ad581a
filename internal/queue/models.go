// Package queue implements the persistent job queue: a single SQLite table
// of priority-ordered shell commands, a PID-file lock, and the signaling
// used to wake the daemon when work arrives.
package queue

import (
	"strings"
	"time"
)

// Status is the single-character lifecycle state stored on a job row.
type Status string

const (
	StatusActive     Status = "a"
	StatusDisabled   Status = "d"
	StatusInProgress Status = "p"
)

var allStatuses = []Status{StatusActive, StatusDisabled, StatusInProgress}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// String returns a human-readable name for CLI presentation.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDisabled:
		return "disabled"
	case StatusInProgress:
		return "in progress"
	default:
		return string(s)
	}
}

// Job is a unit of queued work persisted in SQLite.
type Job struct {
	ID         int64
	Command    string
	Priority   int
	Start      time.Time
	Status     Status
	QueuedTime time.Time
	Ignorable  bool
}

// HistoryEntry is a failed job moved out of the live queue.
type HistoryEntry struct {
	ID           int64
	JobID        int64
	Command      string
	Priority     int
	Start        time.Time
	QueuedTime   time.Time
	ErrorMessage string
	FailedAt     time.Time
}

// Stats aggregates queue counts per status.
type Stats struct {
	Total      int
	Active     int
	Disabled   int
	InProgress int
}
