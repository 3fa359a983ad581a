package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS creator (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        auth_user_id INTEGER NOT NULL DEFAULT 0,
        name TEXT NOT NULL DEFAULT '',
        path_name TEXT NOT NULL DEFAULT '',
        torrent TEXT,
        contributions_remaining REAL NOT NULL DEFAULT 0,
        tumblr TEXT,
        twitter TEXT,
        indicia_image TEXT,
        indicia_portrait TEXT,
        indicia_landscape TEXT,
        paypal_email TEXT,
        created_on TEXT NOT NULL,
        updated_on TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS book (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL DEFAULT '',
        book_type TEXT NOT NULL DEFAULT 'one-shot',
        number INTEGER NOT NULL DEFAULT 0,
        of_number INTEGER NOT NULL DEFAULT 0,
        publication_year INTEGER NOT NULL DEFAULT 0,
        creator_id INTEGER NOT NULL REFERENCES creator(id),
        cc_licence_id INTEGER,
        status TEXT NOT NULL DEFAULT 'draft',
        release_date TEXT,
        fileshare_date TEXT,
        complete_in_progress INTEGER NOT NULL DEFAULT 0,
        fileshare_in_progress INTEGER NOT NULL DEFAULT 0,
        tumblr_post_id TEXT,
        twitter_post_id TEXT,
        cbz TEXT,
        torrent TEXT,
        downloads INTEGER NOT NULL DEFAULT 0,
        views INTEGER NOT NULL DEFAULT 0,
        rating REAL NOT NULL DEFAULT 0,
        created_on TEXT NOT NULL,
        updated_on TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS book_page (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        book_id INTEGER NOT NULL REFERENCES book(id) ON DELETE CASCADE,
        page_no INTEGER NOT NULL,
        image TEXT NOT NULL,
        created_on TEXT NOT NULL,
        updated_on TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS cc_licence (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        number INTEGER NOT NULL DEFAULT 0,
        code TEXT NOT NULL UNIQUE,
        url TEXT NOT NULL DEFAULT '',
        template_img TEXT NOT NULL DEFAULT '',
        template_web TEXT NOT NULL DEFAULT ''
    )`,
	`CREATE TABLE IF NOT EXISTS publication_metadata (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        book_id INTEGER NOT NULL REFERENCES book(id) ON DELETE CASCADE,
        republished INTEGER NOT NULL DEFAULT 0,
        published TEXT NOT NULL DEFAULT '',
        published_name TEXT NOT NULL DEFAULT '',
        published_format TEXT NOT NULL DEFAULT '',
        publisher_type TEXT NOT NULL DEFAULT '',
        publisher TEXT NOT NULL DEFAULT '',
        from_year INTEGER NOT NULL DEFAULT 0,
        to_year INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS publication_serial (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        publication_metadata_id INTEGER NOT NULL REFERENCES publication_metadata(id) ON DELETE CASCADE,
        title TEXT NOT NULL DEFAULT '',
        number INTEGER NOT NULL DEFAULT 0,
        published_format TEXT NOT NULL DEFAULT '',
        publisher_type TEXT NOT NULL DEFAULT '',
        publisher TEXT NOT NULL DEFAULT '',
        from_year INTEGER NOT NULL DEFAULT 0,
        to_year INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS derivative (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        book_id INTEGER NOT NULL REFERENCES book(id) ON DELETE CASCADE,
        title TEXT NOT NULL DEFAULT '',
        creator_name TEXT NOT NULL DEFAULT '',
        from_year INTEGER NOT NULL DEFAULT 0,
        to_year INTEGER NOT NULL DEFAULT 0,
        cc_licence_id INTEGER
    )`,
	`CREATE TABLE IF NOT EXISTS optimize_img_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        image TEXT NOT NULL,
        size TEXT NOT NULL,
        created_on TEXT NOT NULL,
        UNIQUE(image, size)
    )`,
	`CREATE TABLE IF NOT EXISTS download_click (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ip TEXT NOT NULL DEFAULT '',
        auth_user_id INTEGER NOT NULL DEFAULT 0,
        record_table TEXT NOT NULL,
        record_id INTEGER NOT NULL,
        loggable INTEGER NOT NULL DEFAULT 1,
        completed INTEGER NOT NULL DEFAULT 0,
        clicked_at TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS activity_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        book_id INTEGER NOT NULL,
        book_page_id INTEGER NOT NULL DEFAULT 0,
        action TEXT NOT NULL,
        tentative INTEGER NOT NULL DEFAULT 0,
        occurred_at TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_book_creator ON book(creator_id)`,
	`CREATE INDEX IF NOT EXISTS idx_book_page_book ON book_page(book_id)`,
	`CREATE INDEX IF NOT EXISTS idx_download_click_dedup
        ON download_click(ip, auth_user_id, record_table, record_id)`,
}

func (s *Store) applyMigrations(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
