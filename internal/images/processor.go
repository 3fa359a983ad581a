package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"zcomx/internal/config"
	"zcomx/internal/fileutil"
	"zcomx/internal/logging"
	"zcomx/internal/shellutil"
	"zcomx/internal/store"
)

// ErrProcess signals an image variant could not be produced.
var ErrProcess = errors.New("images: process failed")

// Resize geometry per size. The ">" suffix tells convert to only shrink,
// never enlarge, so small originals pass through untouched.
var resizeGeometry = map[string]string{
	SizeWeb: "750x750>",
	SizeCBZ: "1600x2560>",
}

// Processor produces sized variants of uploaded images by shelling out to
// the configured convert binary, and records completed work in the
// optimize log.
type Processor struct {
	cfg    *config.Config
	store  *store.Store
	runner shellutil.Executor
	logger *slog.Logger
}

// NewProcessor builds an image processor. A nil logger discards output.
func NewProcessor(cfg *config.Config, st *store.Store, runner shellutil.Executor, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{cfg: cfg, store: st, runner: runner, logger: logging.NewComponentLogger(logger, "images")}
}

// Process produces the named sizes for an image. No sizes means all of
// them. The original variant is the upload itself; it is only verified
// and logged, never re-encoded.
func (p *Processor) Process(ctx context.Context, name string, sizes ...string) error {
	if len(sizes) == 0 {
		sizes = AllSizes()
	}
	src := Path(p.cfg, SizeOriginal, name)
	if !fileutil.FileExists(src) {
		return fmt.Errorf("%w: original %s missing", ErrProcess, name)
	}

	for _, size := range sizes {
		if size == SizeOriginal {
			if err := p.store.MarkOptimized(ctx, name, size); err != nil {
				return err
			}
			continue
		}
		geometry, ok := resizeGeometry[size]
		if !ok {
			return fmt.Errorf("%w: unknown size %q", ErrProcess, size)
		}

		dst := Path(p.cfg, size, name)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create variant dir: %w", err)
		}
		args := []string{src, "-resize", geometry, "-quality", "85", dst}
		if _, err := p.runner.Run(ctx, p.cfg.Binaries.Convert, args); err != nil {
			var exitErr *shellutil.ExitError
			if errors.As(err, &exitErr) {
				return fmt.Errorf("%w: convert %s to %s: %s", ErrProcess, name, size, exitErr.Error())
			}
			return fmt.Errorf("convert %s to %s: %w", name, size, err)
		}
		if err := p.store.MarkOptimized(ctx, name, size); err != nil {
			return err
		}
		p.logger.Debug("variant produced",
			logging.String("image", name),
			logging.String("size", size),
		)
	}
	return nil
}

// Delete removes every sized variant of an image from disk and clears its
// optimize log. Missing files are not an error.
func (p *Processor) Delete(ctx context.Context, name string) error {
	for _, size := range AllSizes() {
		path := Path(p.cfg, size, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s variant: %w", size, err)
		}
	}
	if err := p.store.ClearOptimizeLog(ctx, name); err != nil {
		return err
	}
	p.logger.Info("image deleted", logging.String("image", name))
	return nil
}
