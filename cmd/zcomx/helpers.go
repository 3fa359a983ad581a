package main

import (
	"context"
	"fmt"
	"strconv"

	"zcomx/internal/release"
	"zcomx/internal/store"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid record id %q", arg)
	}
	return id, nil
}

// bookAndCreator resolves a book id to the book and its creator.
func bookAndCreator(ctx context.Context, st *store.Store, bookID int64) (*store.Book, *store.Creator, error) {
	book, err := st.BookByID(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	creator, err := st.CreatorByID(ctx, book.CreatorID)
	if err != nil {
		return nil, nil, err
	}
	return book, creator, nil
}

// releaseDeps bundles the shared runner dependencies from the command
// context.
func releaseDeps(cc *commandContext) (release.Deps, error) {
	cfg, err := cc.Config()
	if err != nil {
		return release.Deps{}, err
	}
	st, err := cc.Store()
	if err != nil {
		return release.Deps{}, err
	}
	q, err := cc.Queue()
	if err != nil {
		return release.Deps{}, err
	}
	return release.Deps{Cfg: cfg, Store: st, Queue: q}, nil
}
