package release

import (
	"context"
	"fmt"

	"zcomx/internal/barriers"
	"zcomx/internal/queue"
	"zcomx/internal/queuers"
	"zcomx/internal/store"
)

// CompletedAction is the activity-log action recorded when a book's
// complete pipeline finishes.
const CompletedAction = "completed"

// ReleaseBook drives a draft book to completed: delegates the social post,
// then commits the release date on a later pass.
type ReleaseBook struct {
	runner
	Book    *store.Book
	Creator *store.Creator
}

// NewReleaseBook builds the complete-pipeline runner.
func NewReleaseBook(deps Deps, book *store.Book, creator *store.Creator) *ReleaseBook {
	return &ReleaseBook{runner: runner{deps: deps}, Book: book, Creator: creator}
}

// Run executes one resumable pass. A blocking barrier aborts with
// *BarrierError and no state change.
func (r *ReleaseBook) Run(ctx context.Context) ([]*queue.Job, error) {
	applicable, err := r.deps.checker().BarriersForBook(ctx, r.Book, barriers.CompleteBarriers(), true)
	if err != nil {
		return nil, err
	}
	if len(applicable) > 0 {
		return nil, &BarrierError{Barriers: applicable}
	}

	if PostIDFromStore(r.Book.TumblrPostID).IsNotPosted() {
		if err := r.enqueue(ctx, queuers.NewPostBookCompleted(r.deps.Queue, r.Book.ID)); err != nil {
			return nil, err
		}
		r.Book.TumblrPostID = InProgress().StoreValue()
		r.Book.TwitterPostID = InProgress().StoreValue()
		if err := r.deps.Store.UpdateBook(ctx, r.Book); err != nil {
			return nil, err
		}
		r.needsRequeue = true
		return r.queued, nil
	}

	r.Book.ReleaseDate = today()
	r.Book.CompleteInProgress = false
	if err := r.deps.Store.UpdateBook(ctx, r.Book); err != nil {
		return nil, err
	}

	pages, err := r.deps.Store.PagesForBook(ctx, r.Book.ID)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("release: book %d has no pages", r.Book.ID)
	}
	if err := r.deps.Store.AddActivity(ctx, &store.ActivityLog{
		BookID:     r.Book.ID,
		BookPageID: pages[0].ID,
		Action:     CompletedAction,
		Tentative:  true,
	}); err != nil {
		return nil, err
	}
	return r.queued, nil
}

// UnreleaseBook reverses the complete pipeline.
type UnreleaseBook struct {
	runner
	Book    *store.Book
	Creator *store.Creator
}

// NewUnreleaseBook builds the reverse-complete runner.
func NewUnreleaseBook(deps Deps, book *store.Book, creator *store.Creator) *UnreleaseBook {
	return &UnreleaseBook{runner: runner{deps: deps}, Book: book, Creator: creator}
}

// Run clears the release state. An unconfirmed social post is reset so
// the user can retry it later.
func (r *UnreleaseBook) Run(ctx context.Context) ([]*queue.Job, error) {
	r.Book.ReleaseDate = nil
	r.Book.CompleteInProgress = false
	if PostIDFromStore(r.Book.TumblrPostID).IsInProgress() {
		r.Book.TumblrPostID = NotPosted().StoreValue()
	}
	if PostIDFromStore(r.Book.TwitterPostID).IsInProgress() {
		r.Book.TwitterPostID = NotPosted().StoreValue()
	}
	if err := r.deps.Store.UpdateBook(ctx, r.Book); err != nil {
		return nil, err
	}
	return r.queued, nil
}
