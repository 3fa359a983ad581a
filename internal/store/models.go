package store

import (
	"fmt"
	"strings"
	"time"
)

// BookType classifies a book's publication style.
type BookType string

const (
	TypeOneShot    BookType = "one-shot"
	TypeOngoing    BookType = "ongoing"
	TypeMiniSeries BookType = "mini-series"
)

var allBookTypes = []BookType{TypeOneShot, TypeOngoing, TypeMiniSeries}

// ParseBookType converts a string into a known BookType.
func ParseBookType(value string) (BookType, bool) {
	normalized := BookType(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range allBookTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// BookStatus is the coarse visibility state of a book.
type BookStatus string

const (
	BookDraft    BookStatus = "draft"
	BookActive   BookStatus = "active"
	BookDisabled BookStatus = "disabled"
)

// Book is the unit of publication.
type Book struct {
	ID                  int64
	Name                string
	Type                BookType
	Number              int
	OfNumber            int
	PublicationYear     int
	CreatorID           int64
	LicenceID           int64 // zero when unset
	Status              BookStatus
	ReleaseDate         *time.Time
	FileshareDate       *time.Time
	CompleteInProgress  bool
	FileshareInProgress bool
	TumblrPostID        string // empty, sentinel, or post id
	TwitterPostID       string
	CBZ                 string // archive path, empty until fileshare
	Torrent             string
	Downloads           int64
	Views               int64
	Rating              float64
	CreatedOn           time.Time
	UpdatedOn           time.Time
}

// Released reports whether the book has completed the "complete" pipeline.
func (b *Book) Released() bool {
	return b != nil && b.ReleaseDate != nil
}

// FormattedNumber renders the issue number per book type: ongoing issues
// zero-pad to three digits, mini-series include the series length,
// one-shots have no number.
func (b *Book) FormattedNumber() string {
	switch b.Type {
	case TypeOngoing:
		return fmt.Sprintf("%03d", b.Number)
	case TypeMiniSeries:
		return fmt.Sprintf("%02d (of %02d)", b.Number, b.OfNumber)
	default:
		return ""
	}
}

// NameWithNumber joins the book name and its formatted number. This is the
// display title used in artifact file names.
func (b *Book) NameWithNumber() string {
	number := b.FormattedNumber()
	if number == "" {
		return b.Name
	}
	return b.Name + " " + number
}

// BookPage is one image belonging to a book. PageNo is 1-based; page 1 is
// the cover. Within a book the page numbers form a permutation of 1..N at
// rest.
type BookPage struct {
	ID        int64
	BookID    int64
	PageNo    int
	Image     string
	CreatedOn time.Time
	UpdatedOn time.Time
}

// Creator is an author identity.
type Creator struct {
	ID                     int64
	AuthUserID             int64
	Name                   string
	PathName               string // URL-safe
	Torrent                string
	ContributionsRemaining float64
	Tumblr                 string
	Twitter                string
	IndiciaImage           string
	IndiciaPortrait        string
	IndiciaLandscape       string
	PaypalEmail            string
	CreatedOn              time.Time
	UpdatedOn              time.Time
}

// AllRightsReservedCode is the licence code that blocks file sharing.
const AllRightsReservedCode = "All Rights Reserved"

// CCLicence is a named licence with templated text variants.
type CCLicence struct {
	ID          int64
	Number      int // ordering
	Code        string
	URL         string
	TemplateImg string
	TemplateWeb string
}

// IsAllRightsReserved reports whether the licence forbids file sharing.
func (l *CCLicence) IsAllRightsReserved() bool {
	return l != nil && l.Code == AllRightsReservedCode
}

// PublicationMetadata describes a book's prior publication for the indicia.
type PublicationMetadata struct {
	ID              int64
	BookID          int64
	Republished     bool
	Published       string // "whole" or "serial"
	PublishedName   string
	PublishedFormat string // "digital" or "paper"
	PublisherType   string // "press" or "self"
	Publisher       string
	FromYear        int
	ToYear          int
}

// PublicationSerial is one serialized installment of a republished book.
type PublicationSerial struct {
	ID                    int64
	PublicationMetadataID int64
	Title                 string
	Number                int
	PublishedFormat       string
	PublisherType         string
	Publisher             string
	FromYear              int
	ToYear                int
}

// Derivative records the work a book derives from.
type Derivative struct {
	ID          int64
	BookID      int64
	Title       string
	CreatorName string
	FromYear    int
	ToYear      int
	LicenceID   int64
}

// OptimizeImgLog marks an (image, size) pair as optimized.
type OptimizeImgLog struct {
	ID        int64
	Image     string
	Size      string
	CreatedOn time.Time
}

// DownloadClick is a logged intent to download a record's artifact.
type DownloadClick struct {
	ID          int64
	IP          string
	AuthUserID  int64
	RecordTable string
	RecordID    int64
	Loggable    bool
	Completed   bool
	ClickedAt   time.Time
}

// ActivityLog records a pipeline event against a book.
type ActivityLog struct {
	ID         int64
	BookID     int64
	BookPageID int64
	Action     string
	Tentative  bool
	OccurredAt time.Time
}

// DefaultBook returns a book populated from per-field defaults, excluding
// the audit fields (id, created_on, updated_on) which the store assigns.
func DefaultBook() Book {
	return Book{
		Type:   TypeOneShot,
		Status: BookDraft,
	}
}

// DefaultCreator returns a creator populated from per-field defaults,
// excluding the audit fields.
func DefaultCreator() Creator {
	return Creator{}
}
