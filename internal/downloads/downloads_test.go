package downloads_test

import (
	"context"
	"testing"

	"zcomx/internal/downloads"
	"zcomx/internal/store"
	"zcomx/internal/testsupport"
)

func TestLogClickDedupsWithinWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Downloads.DedupWindowSeconds = 3600
	s := testsupport.MustOpenStore(t, cfg)
	creator := testsupport.NewCreator(t, s, "First Last")
	book := testsupport.NewBook(t, s, creator.ID, "My Book")
	logger := downloads.NewLogger(cfg, s, nil)
	ctx := context.Background()

	first, err := logger.LogClick(ctx, &store.DownloadClick{
		IP:          "10.0.0.1",
		RecordTable: "book",
		RecordID:    book.ID,
	})
	if err != nil {
		t.Fatalf("LogClick: %v", err)
	}
	if !first.Loggable {
		t.Fatal("first click must be loggable")
	}

	repeat, err := logger.LogClick(ctx, &store.DownloadClick{
		IP:          "10.0.0.1",
		RecordTable: "book",
		RecordID:    book.ID,
	})
	if err != nil {
		t.Fatalf("LogClick repeat: %v", err)
	}
	if repeat.Loggable {
		t.Fatal("repeat click within window must not be loggable")
	}

	// A different ip is a distinct click.
	other, err := logger.LogClick(ctx, &store.DownloadClick{
		IP:          "10.0.0.2",
		RecordTable: "book",
		RecordID:    book.ID,
	})
	if err != nil {
		t.Fatalf("LogClick other ip: %v", err)
	}
	if !other.Loggable {
		t.Fatal("click from another ip must be loggable")
	}
}

func TestDrainIncrementsBookDownloads(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	creator := testsupport.NewCreator(t, s, "First Last")
	book := testsupport.NewBook(t, s, creator.ID, "My Book")
	logger := downloads.NewLogger(cfg, s, nil)
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		if _, err := logger.LogClick(ctx, &store.DownloadClick{
			IP:          ip,
			RecordTable: "book",
			RecordID:    book.ID,
		}); err != nil {
			t.Fatalf("LogClick: %v", err)
		}
	}

	count, err := logger.Drain(ctx, 2)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if count != 2 {
		t.Fatalf("drained %d, want 2", count)
	}

	count, err = logger.Drain(ctx, 0)
	if err != nil {
		t.Fatalf("Drain remainder: %v", err)
	}
	if count != 1 {
		t.Fatalf("drained %d, want 1", count)
	}

	updated, err := s.BookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("BookByID: %v", err)
	}
	if updated.Downloads != 3 {
		t.Fatalf("downloads = %d, want 3", updated.Downloads)
	}

	// Nothing left to drain.
	count, err = logger.Drain(ctx, 0)
	if err != nil {
		t.Fatalf("Drain empty: %v", err)
	}
	if count != 0 {
		t.Fatalf("drained %d, want 0", count)
	}
}
