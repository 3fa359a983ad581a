package queuers

import (
	"strconv"

	"zcomx/internal/queue"
)

// Flags accepted by the requeue-capable release entry points.
var releaseOpts = []string{"--requeues", "--max-requeues", "--reverse"}

// Flags accepted by the image processing entry point.
var processImgOpts = []string{"--size", "--delete"}

var specs = map[string]Spec{
	"purge_torrents": {
		Kind:    "purge_torrents",
		Program: "zcomx purge-torrents",
	},
	"search_prefetch": {
		Kind:    "search_prefetch",
		Program: "zcomx search-prefetch",
	},
	"optimize_original_img": {
		Kind:      "optimize_original_img",
		Program:   "zcomx process-img",
		CLIOpts:   map[string]any{"--size": "original"},
		ValidOpts: processImgOpts,
	},
	"log_downloads": {
		Kind:      "log_downloads",
		Program:   "zcomx log-downloads",
		CLIOpts:   map[string]any{"--limit": "1000"},
		ValidOpts: []string{"--limit"},
	},
	"delete_img": {
		Kind:      "delete_img",
		Program:   "zcomx process-img",
		CLIOpts:   map[string]any{"--delete": true},
		ValidOpts: processImgOpts,
	},
	"delete_book": {
		Kind:    "delete_book",
		Program: "zcomx delete-book",
	},
	"reverse_set_book_completed": {
		Kind:      "reverse_set_book_completed",
		Program:   "zcomx set-book-completed",
		CLIOpts:   map[string]any{"--reverse": true},
		ValidOpts: releaseOpts,
	},
	"reverse_fileshare_book": {
		Kind:      "reverse_fileshare_book",
		Program:   "zcomx fileshare-book",
		CLIOpts:   map[string]any{"--reverse": true},
		ValidOpts: releaseOpts,
	},
	"notify_p2p_networks": {
		Kind:      "notify_p2p_networks",
		Program:   "zcomx notify-p2p-networks",
		ValidOpts: []string{"--delete"},
	},
	"create_all_torrent": {
		Kind:      "create_all_torrent",
		Program:   "zcomx create-torrent",
		CLIOpts:   map[string]any{"--all": true},
		ValidOpts: []string{"--all", "--creator"},
	},
	"create_creator_torrent": {
		Kind:      "create_creator_torrent",
		Program:   "zcomx create-torrent",
		CLIOpts:   map[string]any{"--creator": true},
		ValidOpts: []string{"--all", "--creator"},
	},
	"optimize_web_img": {
		Kind:      "optimize_web_img",
		Program:   "zcomx process-img",
		CLIOpts:   map[string]any{"--size": "web"},
		ValidOpts: processImgOpts,
	},
	"update_creator_indicia": {
		Kind:      "update_creator_indicia",
		Program:   "zcomx update-creator-indicia",
		CLIOpts:   map[string]any{"-o": true, "-r": true},
		ValidOpts: []string{"-o", "-r"},
	},
	"optimize_img": {
		Kind:      "optimize_img",
		Program:   "zcomx process-img",
		ValidOpts: processImgOpts,
	},
	"optimize_cbz_img": {
		Kind:      "optimize_cbz_img",
		Program:   "zcomx process-img",
		CLIOpts:   map[string]any{"--size": "cbz"},
		ValidOpts: processImgOpts,
	},
	"fileshare_book": {
		Kind:      "fileshare_book",
		Program:   "zcomx fileshare-book",
		ValidOpts: releaseOpts,
	},
	"set_book_completed": {
		Kind:      "set_book_completed",
		Program:   "zcomx set-book-completed",
		ValidOpts: releaseOpts,
	},
	"post_book_completed": {
		Kind:      "post_book_completed",
		Program:   "zcomx post-book-completed",
		ValidOpts: []string{"--requeues", "--max-requeues"},
	},
	"create_book_torrent": {
		Kind:    "create_book_torrent",
		Program: "zcomx create-torrent",
	},
	"create_cbz": {
		Kind:    "create_cbz",
		Program: "zcomx create-cbz",
	},
	"update_creator_indicia_for_release": {
		Kind:      "update_creator_indicia_for_release",
		Program:   "zcomx update-creator-indicia",
		CLIOpts:   map[string]any{"-o": true, "-r": true},
		ValidOpts: []string{"-o", "-r"},
	},
	"optimize_img_for_release": {
		Kind:      "optimize_img_for_release",
		Program:   "zcomx process-img",
		ValidOpts: processImgOpts,
	},
	"optimize_cbz_img_for_release": {
		Kind:      "optimize_cbz_img_for_release",
		Program:   "zcomx process-img",
		CLIOpts:   map[string]any{"--size": "cbz"},
		ValidOpts: processImgOpts,
	},
}

// SpecFor returns the declaration for a command kind.
func SpecFor(kind string) (Spec, bool) {
	spec, ok := specs[kind]
	return spec, ok
}

func newQueuer(kind string, q *queue.Store, args ...string) *Queuer {
	return &Queuer{Spec: specs[kind], Store: q, CLIArgs: args}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// NewPurgeTorrents removes torrents whose owning book is gone.
func NewPurgeTorrents(q *queue.Store) *Queuer {
	return newQueuer("purge_torrents", q)
}

// NewSearchPrefetch rebuilds the released-books listing cache.
func NewSearchPrefetch(q *queue.Store) *Queuer {
	return newQueuer("search_prefetch", q)
}

// NewOptimizeOriginalImg optimizes the original variant of one image.
func NewOptimizeOriginalImg(q *queue.Store, image string) *Queuer {
	return newQueuer("optimize_original_img", q, image)
}

// NewLogDownloads drains pending download clicks into the counters.
func NewLogDownloads(q *queue.Store) *Queuer {
	return newQueuer("log_downloads", q)
}

// NewDeleteImg removes every sized variant of one image.
func NewDeleteImg(q *queue.Store, image string) *Queuer {
	return newQueuer("delete_img", q, image)
}

// NewDeleteBook deletes a book, its pages, and its artifacts.
func NewDeleteBook(q *queue.Store, bookID int64) *Queuer {
	return newQueuer("delete_book", q, formatID(bookID))
}

// NewReverseSetBookCompleted undoes a completed release.
func NewReverseSetBookCompleted(q *queue.Store, bookID int64) *Queuer {
	return newQueuer("reverse_set_book_completed", q, formatID(bookID))
}

// NewReverseFileshareBook undoes a fileshare release.
func NewReverseFileshareBook(q *queue.Store, bookID int64) *Queuer {
	return newQueuer("reverse_fileshare_book", q, formatID(bookID))
}

// NewNotifyP2P announces a CBZ file to the peer-to-peer networks.
func NewNotifyP2P(q *queue.Store, cbzPath string) *Queuer {
	return newQueuer("notify_p2p_networks", q, cbzPath)
}

// NewNotifyP2PDelete announces removal of a CBZ file.
func NewNotifyP2PDelete(q *queue.Store, cbzPath string) *Queuer {
	qr := newQueuer("notify_p2p_networks", q, cbzPath)
	qr.CLIOpts = map[string]any{"--delete": true}
	return qr
}

// NewCreateAllTorrent rebuilds the site-wide torrent.
func NewCreateAllTorrent(q *queue.Store) *Queuer {
	return newQueuer("create_all_torrent", q)
}

// NewCreateCreatorTorrent rebuilds one creator's torrent.
func NewCreateCreatorTorrent(q *queue.Store, creatorID int64) *Queuer {
	return newQueuer("create_creator_torrent", q, formatID(creatorID))
}

// NewOptimizeWebImg optimizes the web variant of one image.
func NewOptimizeWebImg(q *queue.Store, image string) *Queuer {
	return newQueuer("optimize_web_img", q, image)
}

// NewUpdateCreatorIndicia regenerates a creator's indicia images.
func NewUpdateCreatorIndicia(q *queue.Store, creatorID int64) *Queuer {
	return newQueuer("update_creator_indicia", q, formatID(creatorID))
}

// NewOptimizeImg optimizes every sized variant of one image.
func NewOptimizeImg(q *queue.Store, image string) *Queuer {
	return newQueuer("optimize_img", q, image)
}

// NewOptimizeCBZImg optimizes the cbz variant of one image.
func NewOptimizeCBZImg(q *queue.Store, image string) *Queuer {
	return newQueuer("optimize_cbz_img", q, image)
}

// NewFileshareBook starts or resumes the fileshare pipeline.
func NewFileshareBook(q *queue.Store, bookID int64) *Queuer {
	return newQueuer("fileshare_book", q, formatID(bookID))
}

// NewSetBookCompleted starts or resumes the complete pipeline.
func NewSetBookCompleted(q *queue.Store, bookID int64) *Queuer {
	return newQueuer("set_book_completed", q, formatID(bookID))
}

// NewPostBookCompleted posts a completed book to social media.
func NewPostBookCompleted(q *queue.Store, bookID int64) *Queuer {
	return newQueuer("post_book_completed", q, formatID(bookID))
}

// NewCreateBookTorrent builds one book's torrent.
func NewCreateBookTorrent(q *queue.Store, bookID int64) *Queuer {
	return newQueuer("create_book_torrent", q, formatID(bookID))
}

// NewCreateCBZ builds one book's CBZ archive.
func NewCreateCBZ(q *queue.Store, bookID int64) *Queuer {
	return newQueuer("create_cbz", q, formatID(bookID))
}

// NewUpdateCreatorIndiciaForRelease regenerates indicia at release priority.
func NewUpdateCreatorIndiciaForRelease(q *queue.Store, creatorID int64) *Queuer {
	return newQueuer("update_creator_indicia_for_release", q, formatID(creatorID))
}

// NewOptimizeImgForRelease optimizes all variants at release priority.
func NewOptimizeImgForRelease(q *queue.Store, image string) *Queuer {
	return newQueuer("optimize_img_for_release", q, image)
}

// NewOptimizeCBZImgForRelease optimizes the cbz variant at release priority.
func NewOptimizeCBZImgForRelease(q *queue.Store, image string) *Queuer {
	return newQueuer("optimize_cbz_img_for_release", q, image)
}
