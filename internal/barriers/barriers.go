// Package barriers gates release state transitions. A barrier is a named
// predicate over a book; a transition proceeds only when every barrier in
// its set fails to apply.
package barriers

import (
	"context"
	"errors"
	"fmt"

	"zcomx/internal/config"
	"zcomx/internal/images"
	"zcomx/internal/store"
)

// Barrier pairs a predicate with the metadata surfaced to operators.
type Barrier struct {
	Code        string
	Reason      string
	Description string
	Fixes       []string
	Applies     func(ctx context.Context, c *Checker, book *store.Book) (bool, error)
}

// Checker evaluates barrier sets against the record store.
type Checker struct {
	Store *store.Store
	Cfg   *config.Config
}

// NewChecker returns a barrier evaluator.
func NewChecker(st *store.Store, cfg *config.Config) *Checker {
	return &Checker{Store: st, Cfg: cfg}
}

// BarriersForBook evaluates a set in declared order and returns the
// barriers that apply. With failFast it stops at the first.
func (c *Checker) BarriersForBook(ctx context.Context, book *store.Book, set []Barrier, failFast bool) ([]Barrier, error) {
	var applicable []Barrier
	for _, barrier := range set {
		applies, err := barrier.Applies(ctx, c, book)
		if err != nil {
			return nil, fmt.Errorf("barrier %s: %w", barrier.Code, err)
		}
		if !applies {
			continue
		}
		applicable = append(applicable, barrier)
		if failFast {
			break
		}
	}
	return applicable, nil
}

// HasCompleteBarriers reports the first complete-set barrier, if any.
func (c *Checker) HasCompleteBarriers(ctx context.Context, book *store.Book) (*Barrier, error) {
	return c.firstBarrier(ctx, book, CompleteBarriers())
}

// HasFileshareBarriers reports the first fileshare-set barrier, if any.
func (c *Checker) HasFileshareBarriers(ctx context.Context, book *store.Book) (*Barrier, error) {
	return c.firstBarrier(ctx, book, FileshareBarriers())
}

func (c *Checker) firstBarrier(ctx context.Context, book *store.Book, set []Barrier) (*Barrier, error) {
	applicable, err := c.BarriersForBook(ctx, book, set, true)
	if err != nil {
		return nil, err
	}
	if len(applicable) == 0 {
		return nil, nil
	}
	return &applicable[0], nil
}

// CompleteBarriers returns the ordered set gating the complete pipeline.
func CompleteBarriers() []Barrier {
	return []Barrier{
		{
			Code:        "no_name",
			Reason:      "The book has no name.",
			Description: "A book must be named before it can be set as completed.",
			Fixes:       []string{"Edit the book and set its name."},
			Applies: func(_ context.Context, _ *Checker, book *store.Book) (bool, error) {
				return book.Name == "", nil
			},
		},
		{
			Code:        "no_pages",
			Reason:      "The book has no pages.",
			Description: "A book must have at least one page before it can be set as completed.",
			Fixes:       []string{"Upload page images to the book."},
			Applies: func(ctx context.Context, c *Checker, book *store.Book) (bool, error) {
				pages, err := c.Store.PagesForBook(ctx, book.ID)
				if err != nil {
					return false, err
				}
				return len(pages) == 0, nil
			},
		},
		{
			Code:        "dupe_name",
			Reason:      "The name is used by another of the creator's completed books.",
			Description: "Two completed books by the same creator cannot share a name unless they are the same series.",
			Fixes:       []string{"Rename the book.", "Match the book type of the existing series."},
			Applies: func(ctx context.Context, c *Checker, book *store.Book) (bool, error) {
				siblings, err := c.Store.BooksByCreator(ctx, book.CreatorID)
				if err != nil {
					return false, err
				}
				for _, other := range siblings {
					if other.ID == book.ID || other.ReleaseDate == nil {
						continue
					}
					if other.Name == book.Name && other.Type != book.Type {
						return true, nil
					}
				}
				return false, nil
			},
		},
		{
			Code:        "dupe_number",
			Reason:      "The name and number are used by another completed book.",
			Description: "Each issue of a series must have a unique number.",
			Fixes:       []string{"Change the book number."},
			Applies: func(ctx context.Context, c *Checker, book *store.Book) (bool, error) {
				siblings, err := c.Store.BooksByCreator(ctx, book.CreatorID)
				if err != nil {
					return false, err
				}
				for _, other := range siblings {
					if other.ID == book.ID || other.ReleaseDate == nil {
						continue
					}
					if other.Name == book.Name && other.Type == book.Type && other.Number == book.Number {
						return true, nil
					}
				}
				return false, nil
			},
		},
		{
			Code:        "no_licence",
			Reason:      "The book has no licence.",
			Description: "A licence must be set before a book can be set as completed.",
			Fixes:       []string{"Edit the book and choose a licence."},
			Applies: func(_ context.Context, _ *Checker, book *store.Book) (bool, error) {
				return book.LicenceID == 0, nil
			},
		},
		{
			Code:        "no_metadata",
			Reason:      "The book has no publication metadata.",
			Description: "Publication metadata is required to generate the indicia.",
			Fixes:       []string{"Edit the book and set its publication metadata."},
			Applies: func(ctx context.Context, c *Checker, book *store.Book) (bool, error) {
				_, err := c.Store.MetadataForBook(ctx, book.ID)
				if errors.Is(err, store.ErrNotFound) {
					return true, nil
				}
				return false, err
			},
		},
		{
			Code:        "invalid_page_no",
			Reason:      "The book's page numbers are invalid.",
			Description: "Page numbers must start at 1 and contain no duplicates.",
			Fixes:       []string{"Reorder the book's pages."},
			Applies: func(ctx context.Context, c *Checker, book *store.Book) (bool, error) {
				pages, err := c.Store.PagesForBook(ctx, book.ID)
				if err != nil {
					return false, err
				}
				if len(pages) == 0 {
					return false, nil
				}
				seen := make(map[int]struct{}, len(pages))
				hasFirst := false
				for _, page := range pages {
					if page.PageNo == 1 {
						hasFirst = true
					}
					if _, dupe := seen[page.PageNo]; dupe {
						return true, nil
					}
					seen[page.PageNo] = struct{}{}
				}
				return !hasFirst, nil
			},
		},
	}
}

// FileshareBarriers returns the ordered set gating the fileshare pipeline.
func FileshareBarriers() []Barrier {
	return []Barrier{
		{
			Code:        "not_completed",
			Reason:      "The book has not been set as completed.",
			Description: "A book must be completed before it can be released for file sharing.",
			Fixes:       []string{"Set the book as completed."},
			Applies: func(_ context.Context, _ *Checker, book *store.Book) (bool, error) {
				return book.ReleaseDate == nil, nil
			},
		},
		{
			Code:        "licence_arr",
			Reason:      "The licence does not permit file sharing.",
			Description: "Books licensed All Rights Reserved cannot be released for file sharing.",
			Fixes:       []string{"Change the book's licence."},
			Applies: func(ctx context.Context, c *Checker, book *store.Book) (bool, error) {
				if book.LicenceID == 0 {
					return false, nil
				}
				licence, err := c.Store.LicenceByID(ctx, book.LicenceID)
				if err != nil {
					return false, err
				}
				return licence.IsAllRightsReserved(), nil
			},
		},
		{
			Code:        "no_cbz_images",
			Reason:      "Some page images are too small for the CBZ.",
			Description: "Every page image must meet the minimum CBZ dimensions.",
			Fixes:       []string{"Replace undersized page images with larger scans."},
			Applies: func(ctx context.Context, c *Checker, book *store.Book) (bool, error) {
				pages, err := c.Store.PagesForBook(ctx, book.ID)
				if err != nil {
					return false, err
				}
				for _, page := range pages {
					path := images.Path(c.Cfg, images.SizeOriginal, page.Image)
					width, height, err := images.Dimensions(path)
					if err != nil {
						return false, err
					}
					if !images.MeetsCBZMinimum(width, height) {
						return true, nil
					}
				}
				return false, nil
			},
		},
	}
}
