package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AddDownloadClick logs a download intent. Clicks matching an earlier click
// on the same (ip, user, record table, record id) within window are stored
// with loggable=false so refreshes do not over-count.
func (s *Store) AddDownloadClick(ctx context.Context, click *DownloadClick, window time.Duration) (*DownloadClick, error) {
	if click == nil {
		return nil, errors.New("click is nil")
	}
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now().UTC()
	}

	loggable := true
	if window > 0 {
		cutoff := click.ClickedAt.Add(-window)
		row := s.db.QueryRowContext(
			ctx,
			`SELECT COUNT(1) FROM download_click
             WHERE ip = ? AND auth_user_id = ? AND record_table = ? AND record_id = ?
               AND loggable = 1 AND clicked_at > ?`,
			click.IP,
			click.AuthUserID,
			click.RecordTable,
			click.RecordID,
			formatTime(cutoff),
		)
		var count int
		if err := row.Scan(&count); err != nil {
			return nil, fmt.Errorf("dedup query: %w", err)
		}
		loggable = count == 0
	}
	click.Loggable = loggable

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO download_click (ip, auth_user_id, record_table, record_id, loggable, completed, clicked_at)
         VALUES (?, ?, ?, ?, ?, 0, ?)`,
		click.IP,
		click.AuthUserID,
		click.RecordTable,
		click.RecordID,
		boolToInt(click.Loggable),
		formatTime(click.ClickedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert click: %w", err)
	}
	click.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return click, nil
}

// PendingDownloadClicks returns loggable clicks not yet rolled into the
// aggregate counters, oldest first.
func (s *Store) PendingDownloadClicks(ctx context.Context, limit int) ([]*DownloadClick, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, ip, auth_user_id, record_table, record_id, loggable, completed, clicked_at
         FROM download_click WHERE completed = 0 AND loggable = 1 ORDER BY id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending clicks: %w", err)
	}
	defer rows.Close()

	var clicks []*DownloadClick
	for rows.Next() {
		var (
			click     DownloadClick
			loggable  int
			completed int
			clickedAt string
		)
		if err := rows.Scan(&click.ID, &click.IP, &click.AuthUserID, &click.RecordTable, &click.RecordID, &loggable, &completed, &clickedAt); err != nil {
			return nil, err
		}
		click.Loggable = loggable != 0
		click.Completed = completed != 0
		if t, err := parseTimeString(clickedAt); err == nil {
			click.ClickedAt = t
		}
		clicks = append(clicks, &click)
	}
	return clicks, rows.Err()
}

// CompleteDownloadClick marks a click as rolled into the aggregates and
// increments the owning book's download counter when the click targets a
// book record.
func (s *Store) CompleteDownloadClick(ctx context.Context, click *DownloadClick) error {
	if click == nil {
		return errors.New("click is nil")
	}
	if click.RecordTable == "book" {
		if _, err := s.db.ExecContext(
			ctx,
			`UPDATE book SET downloads = downloads + 1 WHERE id = ?`,
			click.RecordID,
		); err != nil {
			return fmt.Errorf("increment downloads: %w", err)
		}
	}
	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE download_click SET completed = 1 WHERE id = ?`,
		click.ID,
	); err != nil {
		return fmt.Errorf("complete click: %w", err)
	}
	click.Completed = true
	return nil
}
