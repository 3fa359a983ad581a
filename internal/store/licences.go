package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const licenceColumns = `id, number, code, url, template_img, template_web`

// AddLicence inserts a licence. Codes are unique.
func (s *Store) AddLicence(ctx context.Context, licence *CCLicence) (*CCLicence, error) {
	if licence == nil {
		return nil, errors.New("licence is nil")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO cc_licence (number, code, url, template_img, template_web)
         VALUES (?, ?, ?, ?, ?)`,
		licence.Number,
		licence.Code,
		licence.URL,
		licence.TemplateImg,
		licence.TemplateWeb,
	)
	if err != nil {
		return nil, fmt.Errorf("insert licence: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.LicenceByID(ctx, id)
}

// LicenceByID fetches a licence by identifier.
func (s *Store) LicenceByID(ctx context.Context, id int64) (*CCLicence, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+licenceColumns+` FROM cc_licence WHERE id = ?`, id)
	licence, err := scanLicence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("licence %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get licence: %w", err)
	}
	return licence, nil
}

// LicenceByCode fetches a licence by its unique code.
func (s *Store) LicenceByCode(ctx context.Context, code string) (*CCLicence, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+licenceColumns+` FROM cc_licence WHERE code = ?`, code)
	licence, err := scanLicence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("licence %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get licence: %w", err)
	}
	return licence, nil
}

// Licences returns all licences in display order.
func (s *Store) Licences(ctx context.Context) ([]*CCLicence, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+licenceColumns+` FROM cc_licence ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("query licences: %w", err)
	}
	defer rows.Close()

	var licences []*CCLicence
	for rows.Next() {
		licence, err := scanLicence(rows)
		if err != nil {
			return nil, err
		}
		licences = append(licences, licence)
	}
	return licences, rows.Err()
}

func scanLicence(scanner interface{ Scan(dest ...any) error }) (*CCLicence, error) {
	var licence CCLicence
	if err := scanner.Scan(
		&licence.ID,
		&licence.Number,
		&licence.Code,
		&licence.URL,
		&licence.TemplateImg,
		&licence.TemplateWeb,
	); err != nil {
		return nil, err
	}
	return &licence, nil
}
