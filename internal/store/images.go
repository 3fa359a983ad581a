package store

import (
	"context"
	"fmt"
	"time"
)

// MarkOptimized records that an (image, size) pair has been optimized.
// Repeat calls are no-ops.
func (s *Store) MarkOptimized(ctx context.Context, image, size string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO optimize_img_log (image, size, created_on) VALUES (?, ?, ?)
         ON CONFLICT(image, size) DO NOTHING`,
		image,
		size,
		formatTime(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("mark optimized: %w", err)
	}
	return nil
}

// IsOptimized reports whether the optimization log contains (image, size).
func (s *Store) IsOptimized(ctx context.Context, image, size string) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM optimize_img_log WHERE image = ? AND size = ?`,
		image,
		size,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("query optimize log: %w", err)
	}
	return count > 0, nil
}

// ClearOptimizeLog removes all optimization entries for an image, forcing
// re-optimization the next time the image is processed.
func (s *Store) ClearOptimizeLog(ctx context.Context, image string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM optimize_img_log WHERE image = ?`, image); err != nil {
		return fmt.Errorf("clear optimize log: %w", err)
	}
	return nil
}
