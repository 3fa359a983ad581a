// Package torrents builds the three torrent kinds published by the site:
// per-book, per-creator, and the site-wide archive torrent.
package torrents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"zcomx/internal/archive"
	"zcomx/internal/config"
	"zcomx/internal/fileutil"
	"zcomx/internal/shellutil"
	"zcomx/internal/store"
)

// ErrCreate signals a torrent build failure: missing target or builder
// nonzero exit.
var ErrCreate = errors.New("torrents: create failed")

// Builder creates torrent files with mktorrent and archives them.
type Builder struct {
	cfg    *config.Config
	store  *store.Store
	runner shellutil.Executor
}

// NewBuilder wires a torrent builder.
func NewBuilder(cfg *config.Config, st *store.Store, runner shellutil.Executor) *Builder {
	return &Builder{cfg: cfg, store: st, runner: runner}
}

// BuildBook creates the torrent for one book's CBZ and records the archive
// path on the book.
func (b *Builder) BuildBook(ctx context.Context, book *store.Book) (string, error) {
	if book.CBZ == "" {
		return "", fmt.Errorf("%w: book %d has no cbz", ErrCreate, book.ID)
	}
	creator, err := b.store.CreatorByID(ctx, book.CreatorID)
	if err != nil {
		return "", fmt.Errorf("%w: creator: %v", ErrCreate, err)
	}

	arc := archive.NewTorrent(b.cfg)
	name := filepath.Base(book.CBZ) + ".torrent"
	relDst := filepath.Join(arc.SubdirPath(creator.Name), name)
	canonical, err := b.build(ctx, book.CBZ, arc, relDst)
	if err != nil {
		return "", err
	}

	book.Torrent = canonical
	if err := b.store.UpdateBook(ctx, book); err != nil {
		return "", fmt.Errorf("%w: record: %v", ErrCreate, err)
	}
	return canonical, nil
}

// BuildCreator creates the torrent covering a creator's whole CBZ
// directory and records the archive path on the creator.
func (b *Builder) BuildCreator(ctx context.Context, creator *store.Creator) (string, error) {
	cbzArc := archive.NewCBZ(b.cfg)
	target := filepath.Join(cbzArc.BaseDir(), cbzArc.SubdirPath(creator.Name))

	arc := archive.NewTorrent(b.cfg)
	name := fmt.Sprintf("%s (%d.%s).torrent", creator.Name, creator.ID, b.cfg.Site.Name)
	relDst := filepath.Join(archive.Shard(creator.Name), name)
	canonical, err := b.build(ctx, target, arc, relDst)
	if err != nil {
		return "", err
	}

	creator.Torrent = canonical
	if err := b.store.UpdateCreator(ctx, creator); err != nil {
		return "", fmt.Errorf("%w: record: %v", ErrCreate, err)
	}
	return canonical, nil
}

// AllTorrentPath returns the canonical location of the site-wide
// torrent: <root>/tor/<site>.torrent, a sibling of the sharded torrent
// archive rather than a file inside it.
func AllTorrentPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.ArchiveRoot, archive.CategoryTorrent, cfg.Site.Name+".torrent")
}

// BuildAll creates the site-wide torrent over the entire CBZ tree. The
// result lives outside the sharded archive so the orphan purge, which
// only knows book and creator torrents, never considers it.
func (b *Builder) BuildAll(ctx context.Context) (string, error) {
	target := archive.NewCBZ(b.cfg).BaseDir()
	tmpFile, cleanup, err := b.makeTorrent(ctx, target)
	if err != nil {
		return "", err
	}
	defer cleanup()

	dst := AllTorrentPath(b.cfg)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreate, err)
	}
	if err := fileutil.MoveFile(tmpFile, dst); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreate, err)
	}
	return dst, nil
}

func (b *Builder) build(ctx context.Context, target string, arc *archive.Archive, relDst string) (string, error) {
	tmpFile, cleanup, err := b.makeTorrent(ctx, target)
	if err != nil {
		return "", err
	}
	defer cleanup()

	canonical, err := arc.AddFile(tmpFile, relDst)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreate, err)
	}
	return canonical, nil
}

// makeTorrent runs mktorrent against target in a temp work dir and
// returns the torrent file path with a cleanup func for the dir.
func (b *Builder) makeTorrent(ctx context.Context, target string) (string, func(), error) {
	if _, err := os.Stat(target); err != nil {
		return "", nil, fmt.Errorf("%w: target %s: %v", ErrCreate, target, err)
	}

	workDir := filepath.Join(b.cfg.TempDir(), uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("%w: temp dir: %v", ErrCreate, err)
	}
	cleanup := func() { os.RemoveAll(workDir) }

	tmpFile := filepath.Join(workDir, "file.torrent")
	args := []string{"-a", b.cfg.Site.AnnounceURL, "-o", tmpFile, target}
	if _, err := b.runner.Run(ctx, b.cfg.Binaries.Mktorrent, args); err != nil {
		cleanup()
		var exitErr *shellutil.ExitError
		if errors.As(err, &exitErr) {
			return "", nil, fmt.Errorf("%w: mktorrent: %s", ErrCreate, exitErr.Stderr)
		}
		return "", nil, fmt.Errorf("%w: mktorrent: %v", ErrCreate, err)
	}
	return tmpFile, cleanup, nil
}
