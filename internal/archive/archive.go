// Package archive manages the on-disk artifact tree. Files are grouped by
// category (cbz, tor, archive) and site name, then letter-sharded by the
// first alphanumeric character of their subject so directories stay
// browsable at scale.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"zcomx/internal/config"
	"zcomx/internal/fileutil"
	"zcomx/internal/textutil"
)

// Categories partition the archive root.
const (
	CategoryCBZ     = "cbz"
	CategoryTorrent = "tor"
	CategoryRemoved = "archive"
)

// ErrNotFound signals a missing source file or archive base directory.
var ErrNotFound = errors.New("archive: not found")

// Archive is one category subtree, e.g. <root>/tor/zco.mx.
type Archive struct {
	root     string
	category string
	site     string
}

// New returns the archive subtree for a category under the configured root.
func New(cfg *config.Config, category string) *Archive {
	return &Archive{
		root:     cfg.Paths.ArchiveRoot,
		category: category,
		site:     cfg.Site.Name,
	}
}

// NewCBZ returns the CBZ artifact subtree.
func NewCBZ(cfg *config.Config) *Archive { return New(cfg, CategoryCBZ) }

// NewTorrent returns the torrent artifact subtree.
func NewTorrent(cfg *config.Config) *Archive { return New(cfg, CategoryTorrent) }

// NewRemoved returns the subtree holding artifacts of deleted books.
func NewRemoved(cfg *config.Config) *Archive { return New(cfg, CategoryRemoved) }

// BaseDir returns the category base, e.g. <root>/cbz/zco.mx.
func (a *Archive) BaseDir() string {
	return filepath.Join(a.root, a.category, a.site)
}

// Shard returns the single-character shard directory for a subject: the
// uppercase first alphanumeric character, or the first character when the
// subject has no alphanumerics. Stable across calls by construction.
func Shard(subject string) string {
	return string(textutil.FirstShardRune(subject))
}

// SubdirPath returns the sharded directory for a subject relative to the
// base, e.g. "F/First Last".
func (a *Archive) SubdirPath(subject string) string {
	return filepath.Join(Shard(subject), subject)
}

// FilePath resolves a relative destination to its canonical absolute path.
func (a *Archive) FilePath(relDst string) string {
	return filepath.Join(a.BaseDir(), relDst)
}

// AddFile moves src into the archive at relDst, creating intermediate
// directories, and returns the canonical path. The move goes through the
// destination filesystem so a partial file never appears at the final name.
func (a *Archive) AddFile(src, relDst string) (string, error) {
	if !fileutil.FileExists(src) {
		return "", fmt.Errorf("%w: source %s", ErrNotFound, src)
	}
	dst := a.FilePath(relDst)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create archive dirs: %w", err)
	}
	if err := fileutil.MoveFile(src, dst); err != nil {
		return "", fmt.Errorf("archive %s: %w", relDst, err)
	}
	return dst, nil
}

// RemoveFile deletes an archived file and prunes any directories the
// removal left empty, up to the category base.
func (a *Archive) RemoveFile(relDst string) error {
	dst := a.FilePath(relDst)
	if err := os.Remove(dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, relDst)
		}
		return fmt.Errorf("remove %s: %w", relDst, err)
	}
	a.pruneEmptyDirs(filepath.Dir(dst))
	return nil
}

func (a *Archive) pruneEmptyDirs(dir string) {
	base := filepath.Clean(a.BaseDir())
	for {
		cleaned := filepath.Clean(dir)
		if cleaned == base || len(cleaned) <= len(base) {
			return
		}
		if err := os.Remove(cleaned); err != nil {
			return
		}
		dir = filepath.Dir(cleaned)
	}
}
