package queue

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS job (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        command TEXT NOT NULL,
        priority INTEGER NOT NULL DEFAULT 0,
        start TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'a',
        queued_time TEXT NOT NULL,
        ignorable INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE INDEX IF NOT EXISTS idx_job_status_priority ON job(status, priority DESC, id)`,
	`CREATE TABLE IF NOT EXISTS job_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        job_id INTEGER NOT NULL,
        command TEXT NOT NULL,
        priority INTEGER NOT NULL DEFAULT 0,
        start TEXT NOT NULL,
        queued_time TEXT NOT NULL,
        error_message TEXT NOT NULL DEFAULT '',
        failed_at TEXT NOT NULL
    )`,
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply queue schema: %w", err)
		}
	}
	return nil
}
