package testsupport

import (
	"context"
	"strconv"
	"testing"

	"zcomx/internal/config"
	"zcomx/internal/store"
)

// FormatID renders a record id the way CLI arguments and file names do.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// MustOpenStore opens a record store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// NewCreator inserts a creator with sensible defaults for tests.
func NewCreator(t testing.TB, s *store.Store, name string) *store.Creator {
	t.Helper()

	creator, err := s.AddCreator(context.Background(), &store.Creator{
		Name:     name,
		PathName: name,
	})
	if err != nil {
		t.Fatalf("store.AddCreator: %v", err)
	}
	return creator
}

// NewBook inserts a draft book owned by creator.
func NewBook(t testing.TB, s *store.Store, creatorID int64, name string) *store.Book {
	t.Helper()

	book := store.DefaultBook()
	book.Name = name
	book.CreatorID = creatorID
	added, err := s.AddBook(context.Background(), &book)
	if err != nil {
		t.Fatalf("store.AddBook: %v", err)
	}
	return added
}

// NewPage inserts a page for a book.
func NewPage(t testing.TB, s *store.Store, bookID int64, pageNo int, image string) *store.BookPage {
	t.Helper()

	page, err := s.AddPage(context.Background(), &store.BookPage{
		BookID: bookID,
		PageNo: pageNo,
		Image:  image,
	})
	if err != nil {
		t.Fatalf("store.AddPage: %v", err)
	}
	return page
}

// NewLicence inserts a licence by code.
func NewLicence(t testing.TB, s *store.Store, code string) *store.CCLicence {
	t.Helper()

	licence, err := s.AddLicence(context.Background(), &store.CCLicence{Code: code})
	if err != nil {
		t.Fatalf("store.AddLicence: %v", err)
	}
	return licence
}
