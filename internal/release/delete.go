package release

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"zcomx/internal/archive"
	"zcomx/internal/queue"
	"zcomx/internal/queuers"
	"zcomx/internal/store"
)

// DeleteBook retires a book: its CBZ moves to the removed-artifacts
// archive, its torrent is deleted, the shared torrents are rebuilt, and
// the record goes away with its pages and metadata.
type DeleteBook struct {
	runner
	Book    *store.Book
	Creator *store.Creator
}

// NewDeleteBook builds the book deletion runner.
func NewDeleteBook(deps Deps, book *store.Book, creator *store.Creator) *DeleteBook {
	return &DeleteBook{runner: runner{deps: deps}, Book: book, Creator: creator}
}

// Run withdraws the book's artifacts and deletes its records.
func (r *DeleteBook) Run(ctx context.Context) ([]*queue.Job, error) {
	if r.Book.CBZ != "" {
		removed := archive.NewRemoved(r.deps.Cfg)
		relDst := filepath.Join(removed.SubdirPath(r.Creator.Name), filepath.Base(r.Book.CBZ))
		if _, err := removed.AddFile(r.Book.CBZ, relDst); err != nil && !errors.Is(err, archive.ErrNotFound) {
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
	if err := r.deps.Store.DeleteBook(ctx, r.Book.ID); err != nil {
		return nil, err
	}
	return r.queued, nil
}
