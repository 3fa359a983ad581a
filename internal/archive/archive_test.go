package archive_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"zcomx/internal/archive"
	"zcomx/internal/testsupport"
)

func TestShard(t *testing.T) {
	cases := []struct {
		subject string
		want    string
	}{
		{"First Last", "F"},
		{"first last", "F"},
		{"'Bout Time", "B"},
		{"123 Comics", "1"},
		{"---", "-"},
	}
	for _, tc := range cases {
		if got := archive.Shard(tc.subject); got != tc.want {
			t.Errorf("Shard(%q) = %q, want %q", tc.subject, got, tc.want)
		}
	}
}

func TestAddFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	arc := archive.NewTorrent(cfg)

	src := filepath.Join(t.TempDir(), "book.cbz.torrent")
	if err := os.WriteFile(src, []byte("torrent data"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	relDst := filepath.Join(arc.SubdirPath("First Last"), "My Book 001.cbz.torrent")
	dst, err := arc.AddFile(src, relDst)
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	want := filepath.Join(cfg.Paths.ArchiveRoot, "tor", cfg.Site.Name, "F", "First Last", "My Book 001.cbz.torrent")
	if dst != want {
		t.Fatalf("canonical path = %q, want %q", dst, want)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read archived file: %v", err)
	}
	if string(data) != "torrent data" {
		t.Fatalf("archived content mismatch: %q", data)
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("source must be moved, not copied")
	}
}

func TestAddFileMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	arc := archive.NewCBZ(cfg)

	_, err := arc.AddFile(filepath.Join(t.TempDir(), "nope.cbz"), "F/First Last/nope.cbz")
	if !errors.Is(err, archive.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveFilePrunesEmptyDirs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	arc := archive.NewCBZ(cfg)

	src := filepath.Join(t.TempDir(), "book.cbz")
	if err := os.WriteFile(src, []byte("cbz"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	relDst := filepath.Join(arc.SubdirPath("First Last"), "My Book.cbz")
	if _, err := arc.AddFile(src, relDst); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	if err := arc.RemoveFile(relDst); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(arc.BaseDir(), "F")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected empty shard dir to be pruned")
	}
	if _, err := os.Stat(arc.BaseDir()); err != nil {
		t.Fatalf("base dir must survive pruning: %v", err)
	}
}

func TestRemoveFileMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	arc := archive.NewCBZ(cfg)

	if err := arc.RemoveFile("F/First Last/ghost.cbz"); !errors.Is(err, archive.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
