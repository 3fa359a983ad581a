// Package requeue implements bounded self-requeueing for multi-step
// pipeline jobs: each step re-enqueues the same command with an
// incremented attempt counter until the work completes or the cap trips.
package requeue

import (
	"context"
	"errors"
	"strconv"

	"zcomx/internal/queue"
	"zcomx/internal/queuers"
)

// DefaultMaxRequeues caps pipeline steps when the caller sets no limit.
const DefaultMaxRequeues = 25

// ErrMaxRequeues signals the attempt cap has been reached. Entry points
// catch it, log the pipeline as stuck, and exit 0 so the job is not
// retried forever.
var ErrMaxRequeues = errors.New("requeue: max requeues reached")

// Requeuer re-enqueues a queuer with the attempt counter advanced.
type Requeuer struct {
	Queuer      *queuers.Queuer
	Requeues    int
	MaxRequeues int
}

// New builds a requeuer; maxRequeues <= 0 falls back to the default.
func New(qr *queuers.Queuer, requeues, maxRequeues int) *Requeuer {
	if maxRequeues <= 0 {
		maxRequeues = DefaultMaxRequeues
	}
	return &Requeuer{Queuer: qr, Requeues: requeues, MaxRequeues: maxRequeues}
}

// Requeue inserts the next attempt: identical options and args with
// --requeues incremented by one. Returns ErrMaxRequeues without inserting
// when the counter has reached the cap.
func (r *Requeuer) Requeue(ctx context.Context) (*queue.Job, error) {
	if r.Requeues >= r.MaxRequeues {
		return nil, ErrMaxRequeues
	}

	opts := make(map[string]any, len(r.Queuer.CLIOpts)+2)
	for flag, value := range r.Queuer.CLIOpts {
		opts[flag] = value
	}
	opts["--requeues"] = strconv.Itoa(r.Requeues + 1)
	opts["--max-requeues"] = strconv.Itoa(r.MaxRequeues)

	next := *r.Queuer
	next.CLIOpts = opts
	return next.Queue(ctx)
}
