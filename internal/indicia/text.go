// Package indicia generates the indicia page appended to every CBZ: the
// publication-history paragraph composed from a book's metadata and the
// rendered PNG produced by the site's external indicia script.
package indicia

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zcomx/internal/config"
	"zcomx/internal/store"
)

// TextComposer builds the indicia text blocks from record data.
type TextComposer struct {
	cfg   *config.Config
	store *store.Store
}

// NewTextComposer wires a text composer.
func NewTextComposer(cfg *config.Config, st *store.Store) *TextComposer {
	return &TextComposer{cfg: cfg, store: st}
}

func yearRange(from, to int) string {
	if to == 0 || to == from {
		return fmt.Sprintf("%d", from)
	}
	return fmt.Sprintf("%d-%d", from, to)
}

func formatAdverb(format string) string {
	if format == "paper" {
		return "in print"
	}
	return "digitally"
}

// PublicationText renders the prior-publication paragraph. Books never
// republished get an empty string.
func (c *TextComposer) PublicationText(ctx context.Context, book *store.Book) (string, error) {
	meta, err := c.store.MetadataForBook(ctx, book.ID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var sentences []string
	if meta.Republished {
		switch meta.Published {
		case "serial":
			serials, err := c.store.SerialsForMetadata(ctx, meta.ID)
			if err != nil {
				return "", err
			}
			for _, serial := range serials {
				sentences = append(sentences, fmt.Sprintf(
					"%q was originally published %s in %s by %s.",
					serial.Title,
					formatAdverb(serial.PublishedFormat),
					yearRange(serial.FromYear, serial.ToYear),
					serial.Publisher,
				))
			}
		default:
			sentences = append(sentences, fmt.Sprintf(
				"This work was originally published %s in %s as %q by %s.",
				formatAdverb(meta.PublishedFormat),
				yearRange(meta.FromYear, meta.ToYear),
				meta.PublishedName,
				meta.Publisher,
			))
		}
	}

	derivative, err := c.store.DerivativeForBook(ctx, book.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	if derivative != nil {
		sentences = append(sentences, fmt.Sprintf(
			"%q is a derivative of %q (%s) by %s.",
			book.Name,
			derivative.Title,
			yearRange(derivative.FromYear, derivative.ToYear),
			derivative.CreatorName,
		))
	}
	return strings.Join(sentences, " "), nil
}

// LicenceText renders the copyright or licence statement.
func (c *TextComposer) LicenceText(ctx context.Context, book *store.Book, creator *store.Creator) (string, error) {
	if book.LicenceID == 0 {
		return fmt.Sprintf("%s IS COPYRIGHT (C) %d BY %s.", strings.ToUpper(book.Name), book.PublicationYear, strings.ToUpper(creator.Name)), nil
	}
	licence, err := c.store.LicenceByID(ctx, book.LicenceID)
	if err != nil {
		return "", err
	}
	if licence.IsAllRightsReserved() {
		return fmt.Sprintf("%s IS COPYRIGHT (C) %d BY %s. ALL RIGHTS RESERVED.", strings.ToUpper(book.Name), book.PublicationYear, strings.ToUpper(creator.Name)), nil
	}
	return fmt.Sprintf("%s IS COPYRIGHT (C) %d BY %s AND IS LICENSED UNDER THE %s LICENCE.", strings.ToUpper(book.Name), book.PublicationYear, strings.ToUpper(creator.Name), strings.ToUpper(licence.Code)), nil
}

// IndiciaText assembles the full text block handed to the renderer:
// licence statement, publication history, and the contribution footer.
func (c *TextComposer) IndiciaText(ctx context.Context, book *store.Book, creator *store.Creator) (string, error) {
	licenceText, err := c.LicenceText(ctx, book, creator)
	if err != nil {
		return "", err
	}
	publicationText, err := c.PublicationText(ctx, book)
	if err != nil {
		return "", err
	}

	blocks := []string{licenceText}
	if publicationText != "" {
		blocks = append(blocks, publicationText)
	}
	blocks = append(blocks,
		fmt.Sprintf("IF YOU ENJOYED THIS WORK YOU CAN CONTRIBUTE MONIES TO THE CARTOONIST: %s/monies", c.cfg.CreatorURL(creator.ID)),
		fmt.Sprintf("CONTACT INFO: %s", c.cfg.CreatorURL(creator.ID)),
	)
	return strings.Join(blocks, "\n\n"), nil
}
