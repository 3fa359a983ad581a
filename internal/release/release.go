package release

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zcomx/internal/barriers"
	"zcomx/internal/config"
	"zcomx/internal/queue"
	"zcomx/internal/store"
)

// BarrierError reports the barriers blocking a transition. Runners return
// it without mutating any state.
type BarrierError struct {
	Barriers []barriers.Barrier
}

func (e *BarrierError) Error() string {
	codes := make([]string, len(e.Barriers))
	for i, b := range e.Barriers {
		codes[i] = b.Code
	}
	return fmt.Sprintf("release: blocked by %s", strings.Join(codes, ", "))
}

// Deps bundles what every runner needs.
type Deps struct {
	Cfg   *config.Config
	Store *store.Store
	Queue *queue.Store
}

func (d Deps) checker() *barriers.Checker {
	return barriers.NewChecker(d.Store, d.Cfg)
}

// runner carries the shared requeue flag and queued-job accounting.
type runner struct {
	deps         Deps
	needsRequeue bool
	queued       []*queue.Job
}

// NeedsRequeue reports whether the run delegated work to sub-jobs and the
// entry point should schedule another pass.
func (r *runner) NeedsRequeue() bool { return r.needsRequeue }

func (r *runner) enqueue(ctx context.Context, q interface {
	Queue(context.Context) (*queue.Job, error)
}) error {
	job, err := q.Queue(ctx)
	if err != nil {
		return err
	}
	r.queued = append(r.queued, job)
	return nil
}

func today() *time.Time {
	now := time.Now().UTC()
	return &now
}
