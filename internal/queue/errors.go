package queue

import "errors"

var (
	// ErrQueueEmpty signals that no runnable job exists.
	ErrQueueEmpty = errors.New("queue: no pending jobs")

	// ErrQueueLocked signals the queue lock file is held by another process.
	ErrQueueLocked = errors.New("queue: locked")

	// ErrQueueLockedStale signals the lock file exists but has not been
	// touched within the stale threshold. The holder is presumed stuck.
	ErrQueueLockedStale = errors.New("queue: locked by stale process")

	// ErrInvalidStatus signals an attempt to set an unknown job status.
	ErrInvalidStatus = errors.New("queue: invalid job status")

	// ErrUnknownCommand signals a command name with no priority assignment.
	ErrUnknownCommand = errors.New("queue: unknown command")
)
