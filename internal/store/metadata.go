package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddMetadata inserts publication metadata for a book. One row per book.
func (s *Store) AddMetadata(ctx context.Context, meta *PublicationMetadata) (*PublicationMetadata, error) {
	if meta == nil {
		return nil, errors.New("metadata is nil")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO publication_metadata (
            book_id, republished, published, published_name, published_format,
            publisher_type, publisher, from_year, to_year
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.BookID,
		boolToInt(meta.Republished),
		meta.Published,
		meta.PublishedName,
		meta.PublishedFormat,
		meta.PublisherType,
		meta.Publisher,
		meta.FromYear,
		meta.ToYear,
	)
	if err != nil {
		return nil, fmt.Errorf("insert metadata: %w", err)
	}
	meta.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return meta, nil
}

// MetadataForBook fetches a book's publication metadata.
func (s *Store) MetadataForBook(ctx context.Context, bookID int64) (*PublicationMetadata, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, book_id, republished, published, published_name,
            published_format, publisher_type, publisher, from_year, to_year
         FROM publication_metadata WHERE book_id = ? ORDER BY id LIMIT 1`,
		bookID,
	)
	var (
		meta        PublicationMetadata
		republished int
	)
	err := row.Scan(
		&meta.ID,
		&meta.BookID,
		&republished,
		&meta.Published,
		&meta.PublishedName,
		&meta.PublishedFormat,
		&meta.PublisherType,
		&meta.Publisher,
		&meta.FromYear,
		&meta.ToYear,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("metadata for book %d: %w", bookID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	meta.Republished = republished != 0
	return &meta, nil
}

// AddSerial inserts a serialized installment under a metadata row.
func (s *Store) AddSerial(ctx context.Context, serial *PublicationSerial) (*PublicationSerial, error) {
	if serial == nil {
		return nil, errors.New("serial is nil")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO publication_serial (
            publication_metadata_id, title, number, published_format,
            publisher_type, publisher, from_year, to_year
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		serial.PublicationMetadataID,
		serial.Title,
		serial.Number,
		serial.PublishedFormat,
		serial.PublisherType,
		serial.Publisher,
		serial.FromYear,
		serial.ToYear,
	)
	if err != nil {
		return nil, fmt.Errorf("insert serial: %w", err)
	}
	serial.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return serial, nil
}

// SerialsForMetadata returns installments ordered by number.
func (s *Store) SerialsForMetadata(ctx context.Context, metadataID int64) ([]*PublicationSerial, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, publication_metadata_id, title, number, published_format,
            publisher_type, publisher, from_year, to_year
         FROM publication_serial WHERE publication_metadata_id = ? ORDER BY number, id`,
		metadataID,
	)
	if err != nil {
		return nil, fmt.Errorf("query serials: %w", err)
	}
	defer rows.Close()

	var serials []*PublicationSerial
	for rows.Next() {
		var serial PublicationSerial
		if err := rows.Scan(
			&serial.ID,
			&serial.PublicationMetadataID,
			&serial.Title,
			&serial.Number,
			&serial.PublishedFormat,
			&serial.PublisherType,
			&serial.Publisher,
			&serial.FromYear,
			&serial.ToYear,
		); err != nil {
			return nil, err
		}
		serials = append(serials, &serial)
	}
	return serials, rows.Err()
}

// AddDerivative inserts the derivative record for a book.
func (s *Store) AddDerivative(ctx context.Context, deriv *Derivative) (*Derivative, error) {
	if deriv == nil {
		return nil, errors.New("derivative is nil")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO derivative (book_id, title, creator_name, from_year, to_year, cc_licence_id)
         VALUES (?, ?, ?, ?, ?, ?)`,
		deriv.BookID,
		deriv.Title,
		deriv.CreatorName,
		deriv.FromYear,
		deriv.ToYear,
		nullableID(deriv.LicenceID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert derivative: %w", err)
	}
	deriv.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return deriv, nil
}

// DerivativeForBook fetches a book's derivative record when present.
func (s *Store) DerivativeForBook(ctx context.Context, bookID int64) (*Derivative, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, book_id, title, creator_name, from_year, to_year, cc_licence_id
         FROM derivative WHERE book_id = ? ORDER BY id LIMIT 1`,
		bookID,
	)
	var (
		deriv     Derivative
		licenceID sql.NullInt64
	)
	err := row.Scan(&deriv.ID, &deriv.BookID, &deriv.Title, &deriv.CreatorName, &deriv.FromYear, &deriv.ToYear, &licenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("derivative for book %d: %w", bookID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get derivative: %w", err)
	}
	deriv.LicenceID = licenceID.Int64
	return &deriv, nil
}
