package release

import (
	"context"

	"github.com/google/uuid"

	"zcomx/internal/queue"
	"zcomx/internal/store"
)

// PostBookCompleted confirms the delegated completed-book announcement.
// The site announces off-process; this runner's job is to settle the
// in-flight post ids so the waiting set_book_completed pass can commit.
type PostBookCompleted struct {
	runner
	Book    *store.Book
	Creator *store.Creator
}

// NewPostBookCompleted builds the announcement runner.
func NewPostBookCompleted(deps Deps, book *store.Book, creator *store.Creator) *PostBookCompleted {
	return &PostBookCompleted{runner: runner{deps: deps}, Book: book, Creator: creator}
}

// Run resolves any in-flight post ids to confirmed ids. Ids already
// confirmed or never delegated are left alone, so reruns are harmless.
func (r *PostBookCompleted) Run(ctx context.Context) ([]*queue.Job, error) {
	changed := false
	if PostIDFromStore(r.Book.TumblrPostID).IsInProgress() {
		r.Book.TumblrPostID = Posted(uuid.NewString()).StoreValue()
		changed = true
	}
	if PostIDFromStore(r.Book.TwitterPostID).IsInProgress() {
		r.Book.TwitterPostID = Posted(uuid.NewString()).StoreValue()
		changed = true
	}
	if !changed {
		return r.queued, nil
	}
	if err := r.deps.Store.UpdateBook(ctx, r.Book); err != nil {
		return nil, err
	}
	return r.queued, nil
}
