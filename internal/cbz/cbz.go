// Package cbz assembles a book's CBZ archive: CBZ-sized page images plus
// the generated indicia page, zipped with maximum compression and tagged
// with the book's provenance comment.
package cbz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"zcomx/internal/archive"
	"zcomx/internal/config"
	"zcomx/internal/fileutil"
	"zcomx/internal/images"
	"zcomx/internal/shellutil"
	"zcomx/internal/store"
	"zcomx/internal/textutil"
)

// ErrCreate signals a CBZ build failure. Archiver stderr is included in
// the wrapping message.
var ErrCreate = errors.New("cbz: create failed")

// IndiciaRenderer produces the indicia PNG appended as the last page.
type IndiciaRenderer interface {
	RenderPage(ctx context.Context, book *store.Book, creator *store.Creator, dst string) error
}

// Builder creates CBZ archives.
type Builder struct {
	cfg     *config.Config
	store   *store.Store
	runner  shellutil.Executor
	indicia IndiciaRenderer
}

// NewBuilder wires a CBZ builder.
func NewBuilder(cfg *config.Config, st *store.Store, runner shellutil.Executor, indicia IndiciaRenderer) *Builder {
	return &Builder{cfg: cfg, store: st, runner: runner, indicia: indicia}
}

// PageNameWidth returns the zero-pad width for page file names: at least
// three digits, widened so the indicia page number (pageCount+1) always
// fits.
func PageNameWidth(pageCount int) int {
	width := len(strconv.Itoa(pageCount + 1))
	if width < 3 {
		width = 3
	}
	return width
}

// FileName returns the CBZ file name for a book:
// "<scrubbed title> (<creator id>.<site>).cbz".
func (b *Builder) FileName(book *store.Book) string {
	title := textutil.ScrubFileName(book.NameWithNumber())
	return fmt.Sprintf("%s (%d.%s).cbz", title, book.CreatorID, b.cfg.Site.Name)
}

// Comment renders the provenance comment embedded in the archive:
// YEAR|CREATOR|BOOK|NUMBER|LICENCE|http://<creator id>.<site>.
func (b *Builder) Comment(book *store.Book, creator *store.Creator, licence *store.CCLicence) string {
	return fmt.Sprintf("%d|%s|%s|%d|%s|http://%d.%s",
		book.PublicationYear,
		creator.Name,
		book.Name,
		book.Number,
		licence.Code,
		book.CreatorID,
		b.cfg.Site.Name,
	)
}

// Build assembles the book's CBZ in a temp directory, archives it, and
// writes the canonical path back onto the book record.
func (b *Builder) Build(ctx context.Context, book *store.Book) (string, error) {
	creator, err := b.store.CreatorByID(ctx, book.CreatorID)
	if err != nil {
		return "", fmt.Errorf("%w: creator: %v", ErrCreate, err)
	}
	licence, err := b.store.LicenceByID(ctx, book.LicenceID)
	if err != nil {
		return "", fmt.Errorf("%w: licence: %v", ErrCreate, err)
	}
	pages, err := b.store.PagesForBook(ctx, book.ID)
	if err != nil {
		return "", fmt.Errorf("%w: pages: %v", ErrCreate, err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: book %d has no pages", ErrCreate, book.ID)
	}

	workDir := filepath.Join(b.cfg.TempDir(), uuid.NewString())
	pagesDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: temp dir: %v", ErrCreate, err)
	}
	defer os.RemoveAll(workDir)

	width := PageNameWidth(len(pages))
	maxPageNo := 0
	for _, page := range pages {
		if page.PageNo > maxPageNo {
			maxPageNo = page.PageNo
		}
		src := images.Path(b.cfg, images.SizeCBZ, page.Image)
		if !fileutil.FileExists(src) {
			src = images.Path(b.cfg, images.SizeOriginal, page.Image)
		}
		dst := filepath.Join(pagesDir, fmt.Sprintf("%0*d%s", width, page.PageNo, filepath.Ext(page.Image)))
		if err := fileutil.CopyFile(src, dst); err != nil {
			return "", fmt.Errorf("%w: copy page %d: %v", ErrCreate, page.PageNo, err)
		}
	}

	indiciaDst := filepath.Join(pagesDir, fmt.Sprintf("%0*d.png", width, maxPageNo+1))
	if err := b.indicia.RenderPage(ctx, book, creator, indiciaDst); err != nil {
		return "", fmt.Errorf("%w: indicia: %v", ErrCreate, err)
	}

	cbzPath := filepath.Join(workDir, b.FileName(book))
	args := []string{"a", "-tzip", "-mx=9", cbzPath, filepath.Join(pagesDir, "*")}
	if _, err := b.runner.Run(ctx, b.cfg.Binaries.SevenZip, args); err != nil {
		var exitErr *shellutil.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: archiver: %s", ErrCreate, exitErr.Stderr)
		}
		return "", fmt.Errorf("%w: archiver: %v", ErrCreate, err)
	}

	if err := WriteComment(cbzPath, b.Comment(book, creator, licence)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreate, err)
	}

	arc := archive.NewCBZ(b.cfg)
	relDst := filepath.Join(arc.SubdirPath(creator.Name), b.FileName(book))
	canonical, err := arc.AddFile(cbzPath, relDst)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreate, err)
	}

	book.CBZ = canonical
	if err := b.store.UpdateBook(ctx, book); err != nil {
		return "", fmt.Errorf("%w: record: %v", ErrCreate, err)
	}
	return canonical, nil
}
