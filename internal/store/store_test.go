package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"zcomx/internal/store"
	"zcomx/internal/testsupport"
)

func TestBookRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	creator := testsupport.NewCreator(t, s, "First Last")
	licence := testsupport.NewLicence(t, s, "CC BY")

	book := store.DefaultBook()
	book.Name = "My Book"
	book.CreatorID = creator.ID
	book.LicenceID = licence.ID
	book.Number = 1
	added, err := s.AddBook(ctx, &book)
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	if added.ID == 0 {
		t.Fatal("expected book ID to be assigned")
	}
	if added.Status != store.BookDraft {
		t.Fatalf("expected draft default, got %s", added.Status)
	}
	if added.ReleaseDate != nil {
		t.Fatal("expected release date null on insert")
	}

	now := time.Now().UTC()
	added.ReleaseDate = &now
	added.Status = store.BookActive
	added.TumblrPostID = "12345"
	if err := s.UpdateBook(ctx, added); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	fetched, err := s.BookByID(ctx, added.ID)
	if err != nil {
		t.Fatalf("BookByID: %v", err)
	}
	if fetched.ReleaseDate == nil || !fetched.ReleaseDate.Equal(now.Truncate(time.Nanosecond)) {
		t.Fatalf("release date lost: %#v", fetched.ReleaseDate)
	}
	if fetched.TumblrPostID != "12345" {
		t.Fatalf("tumblr post id lost: %q", fetched.TumblrPostID)
	}
}

func TestBookByIDNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)

	if _, err := s.BookByID(context.Background(), 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBookCascadesPages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	creator := testsupport.NewCreator(t, s, "First Last")
	book := testsupport.NewBook(t, s, creator.ID, "Doomed")
	testsupport.NewPage(t, s, book.ID, 1, "doomed-001.png")
	testsupport.NewPage(t, s, book.ID, 2, "doomed-002.png")

	meta, err := s.AddMetadata(ctx, &store.PublicationMetadata{BookID: book.ID})
	if err != nil {
		t.Fatalf("AddMetadata: %v", err)
	}
	if meta.ID == 0 {
		t.Fatal("expected metadata id")
	}

	if err := s.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	pages, err := s.PagesForBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("PagesForBook: %v", err)
	}
	if len(pages) != 0 {
		t.Fatalf("expected cascade delete of pages, found %d", len(pages))
	}
	if _, err := s.MetadataForBook(ctx, book.ID); err == nil {
		t.Fatal("expected cascade delete of metadata")
	}
}

func TestPagesOrderedByPageNo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	creator := testsupport.NewCreator(t, s, "First Last")
	book := testsupport.NewBook(t, s, creator.ID, "Ordered")
	testsupport.NewPage(t, s, book.ID, 3, "p3.png")
	testsupport.NewPage(t, s, book.ID, 1, "p1.png")
	testsupport.NewPage(t, s, book.ID, 2, "p2.png")

	pages, err := s.PagesForBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("PagesForBook: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.PageNo != i+1 {
			t.Fatalf("pages out of order: index %d has page_no %d", i, page.PageNo)
		}
	}
}

func TestOptimizeLog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	optimized, err := s.IsOptimized(ctx, "cover.png", "cbz")
	if err != nil {
		t.Fatalf("IsOptimized: %v", err)
	}
	if optimized {
		t.Fatal("expected unoptimized before marking")
	}

	if err := s.MarkOptimized(ctx, "cover.png", "cbz"); err != nil {
		t.Fatalf("MarkOptimized: %v", err)
	}
	// Second mark is a no-op, not an error.
	if err := s.MarkOptimized(ctx, "cover.png", "cbz"); err != nil {
		t.Fatalf("MarkOptimized repeat: %v", err)
	}

	optimized, err = s.IsOptimized(ctx, "cover.png", "cbz")
	if err != nil {
		t.Fatalf("IsOptimized: %v", err)
	}
	if !optimized {
		t.Fatal("expected optimized after marking")
	}

	if err := s.ClearOptimizeLog(ctx, "cover.png"); err != nil {
		t.Fatalf("ClearOptimizeLog: %v", err)
	}
	optimized, err = s.IsOptimized(ctx, "cover.png", "cbz")
	if err != nil {
		t.Fatalf("IsOptimized: %v", err)
	}
	if optimized {
		t.Fatal("expected cleared log")
	}
}

func TestDownloadClickDedup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	window := time.Hour
	first, err := s.AddDownloadClick(ctx, &store.DownloadClick{
		IP:          "10.0.0.1",
		AuthUserID:  7,
		RecordTable: "book",
		RecordID:    1,
	}, window)
	if err != nil {
		t.Fatalf("AddDownloadClick: %v", err)
	}
	if !first.Loggable {
		t.Fatal("first click must be loggable")
	}

	second, err := s.AddDownloadClick(ctx, &store.DownloadClick{
		IP:          "10.0.0.1",
		AuthUserID:  7,
		RecordTable: "book",
		RecordID:    1,
	}, window)
	if err != nil {
		t.Fatalf("AddDownloadClick: %v", err)
	}
	if second.Loggable {
		t.Fatal("duplicate click within window must not be loggable")
	}

	other, err := s.AddDownloadClick(ctx, &store.DownloadClick{
		IP:          "10.0.0.2",
		AuthUserID:  7,
		RecordTable: "book",
		RecordID:    1,
	}, window)
	if err != nil {
		t.Fatalf("AddDownloadClick: %v", err)
	}
	if !other.Loggable {
		t.Fatal("different ip must be loggable")
	}
}

func TestCompleteDownloadClickIncrementsBook(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	creator := testsupport.NewCreator(t, s, "First Last")
	book := testsupport.NewBook(t, s, creator.ID, "Counted")

	click, err := s.AddDownloadClick(ctx, &store.DownloadClick{
		IP:          "10.0.0.1",
		RecordTable: "book",
		RecordID:    book.ID,
	}, time.Hour)
	if err != nil {
		t.Fatalf("AddDownloadClick: %v", err)
	}

	pending, err := s.PendingDownloadClicks(ctx, 10)
	if err != nil {
		t.Fatalf("PendingDownloadClicks: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != click.ID {
		t.Fatalf("unexpected pending clicks: %#v", pending)
	}

	if err := s.CompleteDownloadClick(ctx, pending[0]); err != nil {
		t.Fatalf("CompleteDownloadClick: %v", err)
	}
	updated, err := s.BookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("BookByID: %v", err)
	}
	if updated.Downloads != 1 {
		t.Fatalf("expected downloads=1, got %d", updated.Downloads)
	}

	pending, err = s.PendingDownloadClicks(ctx, 10)
	if err != nil {
		t.Fatalf("PendingDownloadClicks: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending clicks, got %d", len(pending))
	}
}

func TestLicenceByCode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	arr := testsupport.NewLicence(t, s, store.AllRightsReservedCode)
	if !arr.IsAllRightsReserved() {
		t.Fatal("expected all-rights-reserved detection")
	}

	fetched, err := s.LicenceByCode(ctx, store.AllRightsReservedCode)
	if err != nil {
		t.Fatalf("LicenceByCode: %v", err)
	}
	if fetched.ID != arr.ID {
		t.Fatalf("unexpected licence: %#v", fetched)
	}
}
