// Package downloads records download clicks and rolls them into the
// per-book aggregate counters.
package downloads

import (
	"context"
	"log/slog"
	"time"

	"zcomx/internal/config"
	"zcomx/internal/logging"
	"zcomx/internal/store"
)

// Logger records clicks and drains them into the aggregates.
type Logger struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// NewLogger builds a click logger. A nil logger discards output.
func NewLogger(cfg *config.Config, st *store.Store, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Logger{cfg: cfg, store: st, logger: logging.NewComponentLogger(logger, "downloads")}
}

// LogClick records a download intent. Repeat clicks from the same
// (ip, user, record) within the configured dedup window are stored but
// marked unloggable so refreshes do not over-count.
func (l *Logger) LogClick(ctx context.Context, click *store.DownloadClick) (*store.DownloadClick, error) {
	window := time.Duration(l.cfg.Downloads.DedupWindowSeconds) * time.Second
	added, err := l.store.AddDownloadClick(ctx, click, window)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("download click recorded",
		logging.Int64("click_id", added.ID),
		logging.String("record_table", added.RecordTable),
		logging.Int64("record_id", added.RecordID),
		logging.Bool("loggable", added.Loggable),
	)
	return added, nil
}

// Drain rolls up to limit pending loggable clicks into the aggregate
// counters and returns how many it completed. A zero or negative limit
// means no cap.
func (l *Logger) Drain(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = -1
	}
	clicks, err := l.store.PendingDownloadClicks(ctx, limit)
	if err != nil {
		return 0, err
	}
	completed := 0
	for _, click := range clicks {
		if err := l.store.CompleteDownloadClick(ctx, click); err != nil {
			return completed, err
		}
		completed++
	}
	if completed > 0 {
		l.logger.Info("download clicks drained", logging.Int("count", completed))
	}
	return completed, nil
}
