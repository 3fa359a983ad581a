package cbz_test

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zcomx/internal/cbz"
	"zcomx/internal/config"
	"zcomx/internal/images"
	"zcomx/internal/shellutil"
	"zcomx/internal/store"
	"zcomx/internal/testsupport"
)

// stubZipBody makes the 7z stub write a minimal empty ZIP (a bare EOCD
// record) at the output path, which is argument 4 of "a -tzip -mx=9 out *".
const stubZipBody = `out="$4"
printf 'PK\005\006' > "$out"
printf '\0\0\0\0\0\0\0\0\0\0\0\0\0\0\0\0\0\0' >> "$out"
`

type fakeIndicia struct {
	rendered []string
	fail     bool
}

func (f *fakeIndicia) RenderPage(_ context.Context, _ *store.Book, _ *store.Creator, dst string) error {
	if f.fail {
		return errors.New("render failed")
	}
	f.rendered = append(f.rendered, dst)
	return os.WriteFile(dst, []byte("png"), 0o644)
}

func TestPageNameWidth(t *testing.T) {
	cases := []struct {
		pages int
		want  int
	}{
		{1, 3},
		{99, 3},
		{998, 3},
		{999, 4},
		{9998, 4},
		{9999, 5},
	}
	for _, tc := range cases {
		if got := cbz.PageNameWidth(tc.pages); got != tc.want {
			t.Errorf("PageNameWidth(%d) = %d, want %d", tc.pages, got, tc.want)
		}
	}
}

func TestCommentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.cbz")
	writeZip(t, path, map[string]string{"001.png": "page one"})

	comment := "2014|First Last|My Book|1|CC BY|http://123.zco.mx"
	if err := cbz.WriteComment(path, comment); err != nil {
		t.Fatalf("WriteComment: %v", err)
	}

	got, err := cbz.ReadComment(path)
	if err != nil {
		t.Fatalf("ReadComment: %v", err)
	}
	if got != comment {
		t.Fatalf("comment = %q, want %q", got, comment)
	}

	// The archive must stay readable and report the comment through the
	// standard reader.
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("zip.OpenReader after comment: %v", err)
	}
	defer r.Close()
	if r.Comment != comment {
		t.Fatalf("zip reader comment = %q", r.Comment)
	}
	if len(r.File) != 1 || r.File[0].Name != "001.png" {
		t.Fatalf("zip entries damaged: %v", r.File)
	}
}

func TestWriteCommentReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.cbz")
	writeZip(t, path, map[string]string{"001.png": "x"})

	if err := cbz.WriteComment(path, "first comment"); err != nil {
		t.Fatalf("WriteComment: %v", err)
	}
	if err := cbz.WriteComment(path, "second"); err != nil {
		t.Fatalf("WriteComment overwrite: %v", err)
	}
	got, err := cbz.ReadComment(path)
	if err != nil {
		t.Fatalf("ReadComment: %v", err)
	}
	if got != "second" {
		t.Fatalf("comment = %q, want %q", got, "second")
	}
}

func TestWriteCommentRejectsNonZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.zip")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := cbz.WriteComment(path, "c"); err == nil {
		t.Fatal("expected error for non-zip file")
	}
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

type buildFixture struct {
	cfg     *config.Config
	store   *store.Store
	book    *store.Book
	indicia *fakeIndicia
	builder *cbz.Builder
}

func newBuildFixture(t *testing.T, stubBody string) *buildFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("7z", stubBody))
	s := testsupport.MustOpenStore(t, cfg)

	creator := testsupport.NewCreator(t, s, "First Last")
	licence := testsupport.NewLicence(t, s, "CC BY")
	book := testsupport.NewBook(t, s, creator.ID, "My Book")
	book.LicenceID = licence.ID
	book.PublicationYear = 2014
	book.Number = 1
	if err := s.UpdateBook(context.Background(), book); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	writeImage(t, cfg, images.SizeCBZ, "mybook-001.png")
	writeImage(t, cfg, images.SizeOriginal, "mybook-002.png") // cbz variant missing
	testsupport.NewPage(t, s, book.ID, 1, "mybook-001.png")
	testsupport.NewPage(t, s, book.ID, 2, "mybook-002.png")

	indicia := &fakeIndicia{}
	return &buildFixture{
		cfg:     cfg,
		store:   s,
		book:    book,
		indicia: indicia,
		builder: cbz.NewBuilder(cfg, s, shellutil.Runner{}, indicia),
	}
}

func writeImage(t *testing.T, cfg *config.Config, size, name string) {
	t.Helper()
	path := images.Path(cfg, size, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestBuild(t *testing.T) {
	f := newBuildFixture(t, stubZipBody)
	ctx := context.Background()

	canonical, err := f.builder.Build(ctx, f.book)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := filepath.Base(canonical); got != f.builder.FileName(f.book) {
		t.Fatalf("file name = %q, want %q", got, f.builder.FileName(f.book))
	}
	if !strings.Contains(canonical, filepath.Join("cbz", f.cfg.Site.Name, "F", "First Last")) {
		t.Fatalf("archive placement wrong: %q", canonical)
	}
	if _, err := os.Stat(canonical); err != nil {
		t.Fatalf("archived cbz missing: %v", err)
	}

	comment, err := cbz.ReadComment(canonical)
	if err != nil {
		t.Fatalf("ReadComment: %v", err)
	}
	wantComment := fmt.Sprintf("2014|First Last|My Book|1|CC BY|http://%d.%s", f.book.CreatorID, f.cfg.Site.Name)
	if comment != wantComment {
		t.Fatalf("comment = %q, want %q", comment, wantComment)
	}

	// Indicia rendered as the last page with a widened page number.
	if len(f.indicia.rendered) != 1 || filepath.Base(f.indicia.rendered[0]) != "003.png" {
		t.Fatalf("indicia pages: %v", f.indicia.rendered)
	}

	updated, err := f.store.BookByID(ctx, f.book.ID)
	if err != nil {
		t.Fatalf("BookByID: %v", err)
	}
	if updated.CBZ != canonical {
		t.Fatalf("book.cbz = %q, want %q", updated.CBZ, canonical)
	}
}

func TestBuildArchiverFailure(t *testing.T) {
	f := newBuildFixture(t, "echo disk full >&2\nexit 2\n")

	_, err := f.builder.Build(context.Background(), f.book)
	if !errors.Is(err, cbz.ErrCreate) {
		t.Fatalf("expected ErrCreate, got %v", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("error must carry archiver stderr: %v", err)
	}
	updated, err := f.store.BookByID(context.Background(), f.book.ID)
	if err != nil {
		t.Fatalf("BookByID: %v", err)
	}
	if updated.CBZ != "" {
		t.Fatal("failed build must not set book.cbz")
	}
}

func TestBuildIndiciaFailure(t *testing.T) {
	f := newBuildFixture(t, stubZipBody)
	f.indicia.fail = true

	_, err := f.builder.Build(context.Background(), f.book)
	if !errors.Is(err, cbz.ErrCreate) {
		t.Fatalf("expected ErrCreate, got %v", err)
	}
}

func TestBuildNoPages(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("7z", stubZipBody))
	s := testsupport.MustOpenStore(t, cfg)
	creator := testsupport.NewCreator(t, s, "First Last")
	licence := testsupport.NewLicence(t, s, "CC BY")
	book := testsupport.NewBook(t, s, creator.ID, "Empty")
	book.LicenceID = licence.ID
	if err := s.UpdateBook(context.Background(), book); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	builder := cbz.NewBuilder(cfg, s, shellutil.Runner{}, &fakeIndicia{})
	if _, err := builder.Build(context.Background(), book); !errors.Is(err, cbz.ErrCreate) {
		t.Fatalf("expected ErrCreate, got %v", err)
	}
}
