package torrents

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"zcomx/internal/archive"
	"zcomx/internal/config"
	"zcomx/internal/logging"
	"zcomx/internal/store"
)

// Purger removes archived torrent files no book or creator record points
// at any longer, e.g. after a book deletion or rename.
type Purger struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// NewPurger builds a torrent purger. A nil logger discards output.
func NewPurger(cfg *config.Config, st *store.Store, logger *slog.Logger) *Purger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Purger{cfg: cfg, store: st, logger: logging.NewComponentLogger(logger, "torrents")}
}

// Purge walks the torrent archive and deletes orphans, pruning emptied
// shard directories. Returns the removed canonical paths.
func (p *Purger) Purge(ctx context.Context) ([]string, error) {
	known, err := p.store.TorrentPaths(ctx)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]struct{}, len(known))
	for _, path := range known {
		keep[filepath.Clean(path)] = struct{}{}
	}

	arc := archive.NewTorrent(p.cfg)
	base := arc.BaseDir()
	var orphans []string
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == base {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".torrent") {
			return nil
		}
		if _, ok := keep[filepath.Clean(path)]; ok {
			return nil
		}
		orphans = append(orphans, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, path := range orphans {
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return removed, err
		}
		if err := arc.RemoveFile(rel); err != nil {
			return removed, err
		}
		p.logger.Info("orphan torrent removed", logging.String("path", path))
		removed = append(removed, path)
	}
	return removed, nil
}
