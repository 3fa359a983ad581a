package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const creatorColumns = `id, auth_user_id, name, path_name, torrent,
    contributions_remaining, tumblr, twitter, indicia_image,
    indicia_portrait, indicia_landscape, paypal_email, created_on, updated_on`

// AddCreator inserts a creator and returns it with audit fields assigned.
func (s *Store) AddCreator(ctx context.Context, creator *Creator) (*Creator, error) {
	if creator == nil {
		return nil, errors.New("creator is nil")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO creator (
            auth_user_id, name, path_name, torrent, contributions_remaining,
            tumblr, twitter, indicia_image, indicia_portrait,
            indicia_landscape, paypal_email, created_on, updated_on
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		creator.AuthUserID,
		creator.Name,
		creator.PathName,
		nullableString(creator.Torrent),
		creator.ContributionsRemaining,
		nullableString(creator.Tumblr),
		nullableString(creator.Twitter),
		nullableString(creator.IndiciaImage),
		nullableString(creator.IndiciaPortrait),
		nullableString(creator.IndiciaLandscape),
		nullableString(creator.PaypalEmail),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert creator: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.CreatorByID(ctx, id)
}

// CreatorByID fetches a creator by identifier.
func (s *Store) CreatorByID(ctx context.Context, id int64) (*Creator, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+creatorColumns+` FROM creator WHERE id = ?`, id)
	creator, err := scanCreator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("creator %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}
	return creator, nil
}

// UpdateCreator persists changes to an existing creator.
func (s *Store) UpdateCreator(ctx context.Context, creator *Creator) error {
	if creator == nil {
		return errors.New("creator is nil")
	}
	creator.UpdatedOn = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE creator
         SET auth_user_id = ?, name = ?, path_name = ?, torrent = ?,
             contributions_remaining = ?, tumblr = ?, twitter = ?,
             indicia_image = ?, indicia_portrait = ?, indicia_landscape = ?,
             paypal_email = ?, updated_on = ?
         WHERE id = ?`,
		creator.AuthUserID,
		creator.Name,
		creator.PathName,
		nullableString(creator.Torrent),
		creator.ContributionsRemaining,
		nullableString(creator.Tumblr),
		nullableString(creator.Twitter),
		nullableString(creator.IndiciaImage),
		nullableString(creator.IndiciaPortrait),
		nullableString(creator.IndiciaLandscape),
		nullableString(creator.PaypalEmail),
		formatTime(creator.UpdatedOn),
		creator.ID,
	)
	if err != nil {
		return fmt.Errorf("update creator: %w", err)
	}
	return nil
}

func scanCreator(scanner interface{ Scan(dest ...any) error }) (*Creator, error) {
	var (
		creator          Creator
		torrent          sql.NullString
		tumblr           sql.NullString
		twitter          sql.NullString
		indiciaImage     sql.NullString
		indiciaPortrait  sql.NullString
		indiciaLandscape sql.NullString
		paypalEmail      sql.NullString
		createdRaw       string
		updatedRaw       string
	)
	if err := scanner.Scan(
		&creator.ID,
		&creator.AuthUserID,
		&creator.Name,
		&creator.PathName,
		&torrent,
		&creator.ContributionsRemaining,
		&tumblr,
		&twitter,
		&indiciaImage,
		&indiciaPortrait,
		&indiciaLandscape,
		&paypalEmail,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	creator.Torrent = torrent.String
	creator.Tumblr = tumblr.String
	creator.Twitter = twitter.String
	creator.IndiciaImage = indiciaImage.String
	creator.IndiciaPortrait = indiciaPortrait.String
	creator.IndiciaLandscape = indiciaLandscape.String
	creator.PaypalEmail = paypalEmail.String
	if created, err := parseTimeString(createdRaw); err == nil {
		creator.CreatedOn = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		creator.UpdatedOn = updated
	}
	return &creator, nil
}
