package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const bookColumns = `id, name, book_type, number, of_number, publication_year,
    creator_id, cc_licence_id, status, release_date, fileshare_date,
    complete_in_progress, fileshare_in_progress, tumblr_post_id,
    twitter_post_id, cbz, torrent, downloads, views, rating,
    created_on, updated_on`

// AddBook inserts a book and returns it with audit fields assigned.
func (s *Store) AddBook(ctx context.Context, book *Book) (*Book, error) {
	if book == nil {
		return nil, errors.New("book is nil")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO book (
            name, book_type, number, of_number, publication_year, creator_id,
            cc_licence_id, status, release_date, fileshare_date,
            complete_in_progress, fileshare_in_progress, tumblr_post_id,
            twitter_post_id, cbz, torrent, downloads, views, rating,
            created_on, updated_on
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.Name,
		string(book.Type),
		book.Number,
		book.OfNumber,
		book.PublicationYear,
		book.CreatorID,
		nullableID(book.LicenceID),
		string(book.Status),
		nullableTime(book.ReleaseDate),
		nullableTime(book.FileshareDate),
		boolToInt(book.CompleteInProgress),
		boolToInt(book.FileshareInProgress),
		nullableString(book.TumblrPostID),
		nullableString(book.TwitterPostID),
		nullableString(book.CBZ),
		nullableString(book.Torrent),
		book.Downloads,
		book.Views,
		book.Rating,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.BookByID(ctx, id)
}

// BookByID fetches a book by identifier.
func (s *Store) BookByID(ctx context.Context, id int64) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM book WHERE id = ?`, id)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// UpdateBook persists changes to an existing book.
func (s *Store) UpdateBook(ctx context.Context, book *Book) error {
	if book == nil {
		return errors.New("book is nil")
	}
	book.UpdatedOn = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE book
         SET name = ?, book_type = ?, number = ?, of_number = ?,
             publication_year = ?, creator_id = ?, cc_licence_id = ?,
             status = ?, release_date = ?, fileshare_date = ?,
             complete_in_progress = ?, fileshare_in_progress = ?,
             tumblr_post_id = ?, twitter_post_id = ?, cbz = ?, torrent = ?,
             downloads = ?, views = ?, rating = ?, updated_on = ?
         WHERE id = ?`,
		book.Name,
		string(book.Type),
		book.Number,
		book.OfNumber,
		book.PublicationYear,
		book.CreatorID,
		nullableID(book.LicenceID),
		string(book.Status),
		nullableTime(book.ReleaseDate),
		nullableTime(book.FileshareDate),
		boolToInt(book.CompleteInProgress),
		boolToInt(book.FileshareInProgress),
		nullableString(book.TumblrPostID),
		nullableString(book.TwitterPostID),
		nullableString(book.CBZ),
		nullableString(book.Torrent),
		book.Downloads,
		book.Views,
		book.Rating,
		formatTime(book.UpdatedOn),
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

// DeleteBook removes a book; pages and publication metadata cascade.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM book WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// BooksByCreator returns a creator's books ordered by name, number.
func (s *Store) BooksByCreator(ctx context.Context, creatorID int64) ([]*Book, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+bookColumns+` FROM book WHERE creator_id = ? ORDER BY name, number`,
		creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("query books by creator: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// ReleasedBooks returns every book with a release date, ordered by creator
// then name. Used by the all-torrent builder and the listing cache.
func (s *Store) ReleasedBooks(ctx context.Context) ([]*Book, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+bookColumns+` FROM book WHERE release_date IS NOT NULL ORDER BY creator_id, name, number`,
	)
	if err != nil {
		return nil, fmt.Errorf("query released books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// TorrentPaths returns every torrent path recorded on a book or creator.
// The purge job treats archived torrents outside this set as orphans.
func (s *Store) TorrentPaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT torrent FROM book WHERE torrent != ''
         UNION SELECT torrent FROM creator WHERE torrent != ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("query torrent paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// AddPage inserts a book page.
func (s *Store) AddPage(ctx context.Context, page *BookPage) (*BookPage, error) {
	if page == nil {
		return nil, errors.New("page is nil")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO book_page (book_id, page_no, image, created_on, updated_on)
         VALUES (?, ?, ?, ?, ?)`,
		page.BookID,
		page.PageNo,
		page.Image,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.PageByID(ctx, id)
}

// PageByID fetches a page by identifier.
func (s *Store) PageByID(ctx context.Context, id int64) (*BookPage, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, book_id, page_no, image, created_on, updated_on FROM book_page WHERE id = ?`,
		id,
	)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("page %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return page, nil
}

// PagesForBook returns a book's pages ordered by page number.
func (s *Store) PagesForBook(ctx context.Context, bookID int64) ([]*BookPage, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, book_id, page_no, image, created_on, updated_on
         FROM book_page WHERE book_id = ? ORDER BY page_no`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []*BookPage
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// DeletePage removes a single page.
func (s *Store) DeletePage(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM book_page WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// AddActivity appends an activity-log entry.
func (s *Store) AddActivity(ctx context.Context, entry *ActivityLog) error {
	if entry == nil {
		return errors.New("activity entry is nil")
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO activity_log (book_id, book_page_id, action, tentative, occurred_at)
         VALUES (?, ?, ?, ?, ?)`,
		entry.BookID,
		entry.BookPageID,
		entry.Action,
		boolToInt(entry.Tentative),
		formatTime(entry.OccurredAt),
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	entry.ID, _ = res.LastInsertId()
	return nil
}

// ActivityForBook returns a book's activity entries, newest first.
func (s *Store) ActivityForBook(ctx context.Context, bookID int64) ([]*ActivityLog, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, book_id, book_page_id, action, tentative, occurred_at
         FROM activity_log WHERE book_id = ? ORDER BY id DESC`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var entries []*ActivityLog
	for rows.Next() {
		var (
			entry     ActivityLog
			tentative int
			occurred  string
		)
		if err := rows.Scan(&entry.ID, &entry.BookID, &entry.BookPageID, &entry.Action, &tentative, &occurred); err != nil {
			return nil, err
		}
		entry.Tentative = tentative != 0
		if t, err := parseTimeString(occurred); err == nil {
			entry.OccurredAt = t
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func scanBook(scanner interface{ Scan(dest ...any) error }) (*Book, error) {
	var (
		id                  int64
		name                string
		bookType            string
		number              int
		ofNumber            int
		publicationYear     int
		creatorID           int64
		licenceID           sql.NullInt64
		status              string
		releaseDate         sql.NullString
		fileshareDate       sql.NullString
		completeInProgress  int
		fileshareInProgress int
		tumblrPostID        sql.NullString
		twitterPostID       sql.NullString
		cbz                 sql.NullString
		torrent             sql.NullString
		downloads           int64
		views               int64
		rating              float64
		createdRaw          string
		updatedRaw          string
	)
	if err := scanner.Scan(
		&id,
		&name,
		&bookType,
		&number,
		&ofNumber,
		&publicationYear,
		&creatorID,
		&licenceID,
		&status,
		&releaseDate,
		&fileshareDate,
		&completeInProgress,
		&fileshareInProgress,
		&tumblrPostID,
		&twitterPostID,
		&cbz,
		&torrent,
		&downloads,
		&views,
		&rating,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	book := &Book{
		ID:                  id,
		Name:                name,
		Type:                BookType(bookType),
		Number:              number,
		OfNumber:            ofNumber,
		PublicationYear:     publicationYear,
		CreatorID:           creatorID,
		LicenceID:           licenceID.Int64,
		Status:              BookStatus(status),
		ReleaseDate:         scanNullableTime(releaseDate),
		FileshareDate:       scanNullableTime(fileshareDate),
		CompleteInProgress:  completeInProgress != 0,
		FileshareInProgress: fileshareInProgress != 0,
		TumblrPostID:        tumblrPostID.String,
		TwitterPostID:       twitterPostID.String,
		CBZ:                 cbz.String,
		Torrent:             torrent.String,
		Downloads:           downloads,
		Views:               views,
		Rating:              rating,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		book.CreatedOn = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		book.UpdatedOn = updated
	}
	return book, nil
}

func scanPage(scanner interface{ Scan(dest ...any) error }) (*BookPage, error) {
	var (
		page       BookPage
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&page.ID, &page.BookID, &page.PageNo, &page.Image, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		page.CreatedOn = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		page.UpdatedOn = updated
	}
	return &page, nil
}
