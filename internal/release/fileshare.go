package release

import (
	"context"
	"errors"
	"os"

	"zcomx/internal/barriers"
	"zcomx/internal/images"
	"zcomx/internal/queue"
	"zcomx/internal/queuers"
	"zcomx/internal/store"
)

// FileshareBook drives a completed book to file-shared. Each pass performs
// the first outstanding step, delegating long work to sub-jobs and
// requeueing itself until the terminal commit.
type FileshareBook struct {
	runner
	Book    *store.Book
	Creator *store.Creator
}

// NewFileshareBook builds the fileshare-pipeline runner.
func NewFileshareBook(deps Deps, book *store.Book, creator *store.Creator) *FileshareBook {
	return &FileshareBook{runner: runner{deps: deps}, Book: book, Creator: creator}
}

func (r *FileshareBook) optimizeEnqueuer() images.Optimizer {
	return func(ctx context.Context, img, _ string) error {
		return r.enqueue(ctx, queuers.NewOptimizeCBZImgForRelease(r.deps.Queue, img))
	}
}

// Run executes one resumable pass in strict step order.
func (r *FileshareBook) Run(ctx context.Context) ([]*queue.Job, error) {
	applicable, err := r.deps.checker().BarriersForBook(ctx, r.Book, barriers.FileshareBarriers(), true)
	if err != nil {
		return nil, err
	}
	if len(applicable) > 0 {
		return nil, &BarrierError{Barriers: applicable}
	}

	pages, err := r.deps.Store.PagesForBook(ctx, r.Book.ID)
	if err != nil {
		return nil, err
	}
	pageImages := make([]string, len(pages))
	for i, page := range pages {
		pageImages[i] = page.Image
	}

	// Page images must have optimized cbz variants.
	pageSet := images.CBZImagesForRelease(r.deps.Store, pageImages)
	count, err := pageSet.Optimize(ctx, r.optimizeEnqueuer())
	if err != nil {
		return nil, err
	}
	if count > 0 {
		r.needsRequeue = true
		return r.queued, nil
	}

	// The creator needs pre-rendered indicia images.
	if r.Creator.IndiciaPortrait == "" || r.Creator.IndiciaLandscape == "" {
		if err := r.enqueue(ctx, queuers.NewUpdateCreatorIndiciaForRelease(r.deps.Queue, r.Creator.ID)); err != nil {
			return nil, err
		}
		r.needsRequeue = true
		return r.queued, nil
	}

	// And the indicia images must be optimized too.
	indiciaSet := images.CBZImagesForRelease(r.deps.Store, []string{r.Creator.IndiciaPortrait, r.Creator.IndiciaLandscape})
	count, err = indiciaSet.Optimize(ctx, r.optimizeEnqueuer())
	if err != nil {
		return nil, err
	}
	if count > 0 {
		r.needsRequeue = true
		return r.queued, nil
	}

	if r.Book.CBZ == "" {
		if err := r.enqueue(ctx, queuers.NewCreateCBZ(r.deps.Queue, r.Book.ID)); err != nil {
			return nil, err
		}
		r.needsRequeue = true
		return r.queued, nil
	}

	if r.Book.Torrent == "" {
		for _, qr := range []*queuers.Queuer{
			queuers.NewCreateBookTorrent(r.deps.Queue, r.Book.ID),
			queuers.NewCreateCreatorTorrent(r.deps.Queue, r.Creator.ID),
			queuers.NewCreateAllTorrent(r.deps.Queue),
			queuers.NewNotifyP2P(r.deps.Queue, r.Book.CBZ),
		} {
			if err := r.enqueue(ctx, qr); err != nil {
				return nil, err
			}
		}
		r.needsRequeue = true
		return r.queued, nil
	}

	r.Book.FileshareDate = today()
	r.Book.FileshareInProgress = false
	if err := r.deps.Store.UpdateBook(ctx, r.Book); err != nil {
		return nil, err
	}
	return r.queued, nil
}

// UnfileshareBook reverses the fileshare pipeline: withdraws artifacts,
// rebuilds the shared torrents, and clears the book's fileshare state.
type UnfileshareBook struct {
	runner
	Book    *store.Book
	Creator *store.Creator
}

// NewUnfileshareBook builds the reverse-fileshare runner.
func NewUnfileshareBook(deps Deps, book *store.Book, creator *store.Creator) *UnfileshareBook {
	return &UnfileshareBook{runner: runner{deps: deps}, Book: book, Creator: creator}
}

// Run withdraws the book's artifacts and resets its fileshare columns.
func (r *UnfileshareBook) Run(ctx context.Context) ([]*queue.Job, error) {
	if r.Book.CBZ != "" {
		if err := os.Remove(r.Book.CBZ); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		for _, qr := range []*queuers.Queuer{
			queuers.NewCreateCreatorTorrent(r.deps.Queue, r.Creator.ID),
			queuers.NewCreateAllTorrent(r.deps.Queue),
			queuers.NewNotifyP2PDelete(r.deps.Queue, r.Book.CBZ),
		} {
			if err := r.enqueue(ctx, qr); err != nil {
				return nil, err
			}
		}
	}
	if r.Book.Torrent != "" {
		if err := os.Remove(r.Book.Torrent); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	r.Book.CBZ = ""
	r.Book.Torrent = ""
	r.Book.FileshareDate = nil
	r.Book.FileshareInProgress = false
	if err := r.deps.Store.UpdateBook(ctx, r.Book); err != nil {
		return nil, err
	}
	return r.queued, nil
}
