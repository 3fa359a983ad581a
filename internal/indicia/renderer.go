package indicia

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"zcomx/internal/config"
	"zcomx/internal/fileutil"
	"zcomx/internal/images"
	"zcomx/internal/shellutil"
	"zcomx/internal/store"
)

// ErrRender signals the external indicia script failed.
var ErrRender = errors.New("indicia: render failed")

// Orientation selects the indicia page layout.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Renderer drives the external indicia script.
type Renderer struct {
	cfg    *config.Config
	store  *store.Store
	runner shellutil.Executor
	text   *TextComposer
}

// NewRenderer wires an indicia renderer.
func NewRenderer(cfg *config.Config, st *store.Store, runner shellutil.Executor) *Renderer {
	return &Renderer{cfg: cfg, store: st, runner: runner, text: NewTextComposer(cfg, st)}
}

// Render invokes the script: creator id, metadata text file, indicia
// image, orientation, output path.
func (r *Renderer) Render(ctx context.Context, creatorID int64, body, indiciaImage string, orientation Orientation, dst string) error {
	workDir := filepath.Join(r.cfg.TempDir(), uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("%w: temp dir: %v", ErrRender, err)
	}
	defer os.RemoveAll(workDir)

	textFile := filepath.Join(workDir, "metadata.txt")
	if err := os.WriteFile(textFile, []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: write metadata: %v", ErrRender, err)
	}

	args := []string{
		fmt.Sprintf("%d", creatorID),
		textFile,
		indiciaImage,
		string(orientation),
		dst,
	}
	if _, err := r.runner.Run(ctx, r.cfg.Binaries.IndiciaScript, args); err != nil {
		var exitErr *shellutil.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s", ErrRender, exitErr.Stderr)
		}
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if !fileutil.FileExists(dst) {
		return fmt.Errorf("%w: script produced no output at %s", ErrRender, dst)
	}
	return nil
}

// OrientationForBook picks the layout from the book's last page: landscape
// only when that page image is wider than tall.
func (r *Renderer) OrientationForBook(ctx context.Context, book *store.Book) (Orientation, error) {
	pages, err := r.store.PagesForBook(ctx, book.ID)
	if err != nil {
		return Portrait, err
	}
	if len(pages) == 0 {
		return Portrait, nil
	}
	last := pages[len(pages)-1]
	path := images.Path(r.cfg, images.SizeCBZ, last.Image)
	if !fileutil.FileExists(path) {
		path = images.Path(r.cfg, images.SizeOriginal, last.Image)
	}
	landscape, err := images.IsLandscape(path)
	if err != nil {
		// Unreadable page image: fall back to the default layout.
		return Portrait, nil
	}
	if landscape {
		return Landscape, nil
	}
	return Portrait, nil
}

// RenderPage renders a book's indicia as the CBZ's final page. A creator
// with a pre-rendered image for the chosen orientation short-circuits the
// script invocation.
func (r *Renderer) RenderPage(ctx context.Context, book *store.Book, creator *store.Creator, dst string) error {
	orientation, err := r.OrientationForBook(ctx, book)
	if err != nil {
		return fmt.Errorf("%w: orientation: %v", ErrRender, err)
	}

	prerendered := creator.IndiciaPortrait
	if orientation == Landscape {
		prerendered = creator.IndiciaLandscape
	}
	if prerendered != "" {
		src := images.Path(r.cfg, images.SizeCBZ, prerendered)
		if fileutil.FileExists(src) {
			return fileutil.CopyFile(src, dst)
		}
	}

	body, err := r.text.IndiciaText(ctx, book, creator)
	if err != nil {
		return fmt.Errorf("%w: text: %v", ErrRender, err)
	}
	indiciaImage := ""
	if creator.IndiciaImage != "" {
		indiciaImage = images.Path(r.cfg, images.SizeOriginal, creator.IndiciaImage)
	}
	return r.Render(ctx, creator.ID, body, indiciaImage, orientation, dst)
}

// UpdateCreator regenerates the creator's pre-rendered portrait and
// landscape indicia images and records their names.
func (r *Renderer) UpdateCreator(ctx context.Context, creator *store.Creator) error {
	body := fmt.Sprintf("IF YOU ENJOYED THIS WORK YOU CAN CONTRIBUTE MONIES TO THE CARTOONIST: %s/monies\n\nCONTACT INFO: %s",
		r.cfg.CreatorURL(creator.ID), r.cfg.CreatorURL(creator.ID))

	indiciaImage := ""
	if creator.IndiciaImage != "" {
		indiciaImage = images.Path(r.cfg, images.SizeOriginal, creator.IndiciaImage)
	}

	for _, orientation := range []Orientation{Portrait, Landscape} {
		name := fmt.Sprintf("indicia_%s_%d.png", orientation, creator.ID)
		dst := images.Path(r.cfg, images.SizeCBZ, name)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
		if err := r.Render(ctx, creator.ID, body, indiciaImage, orientation, dst); err != nil {
			return err
		}
		if orientation == Portrait {
			creator.IndiciaPortrait = name
		} else {
			creator.IndiciaLandscape = name
		}
	}
	return r.store.UpdateCreator(ctx, creator)
}
