// Package release implements the four resumable pipeline runners that
// move a book between draft, completed, and file-shared states.
package release

// inProgressSentinel is the stored marker for a social-media post that has
// been delegated but not confirmed. Kept outside the value space of real
// post ids.
const inProgressSentinel = "__in_progress__"

// postState enumerates the social post lifecycle.
type postState int

const (
	stateNotPosted postState = iota
	stateInProgress
	statePosted
)

// PostID models a social-media post reference: not yet posted, post in
// flight, or posted with a concrete id.
type PostID struct {
	state postState
	id    string
}

// NotPosted is the zero post state.
func NotPosted() PostID { return PostID{state: stateNotPosted} }

// InProgress marks a delegated, unconfirmed post.
func InProgress() PostID { return PostID{state: stateInProgress} }

// Posted wraps a confirmed post id.
func Posted(id string) PostID { return PostID{state: statePosted, id: id} }

// PostIDFromStore decodes the persisted column value.
func PostIDFromStore(value string) PostID {
	switch value {
	case "":
		return NotPosted()
	case inProgressSentinel:
		return InProgress()
	default:
		return Posted(value)
	}
}

// StoreValue encodes the post id for persistence.
func (p PostID) StoreValue() string {
	switch p.state {
	case stateInProgress:
		return inProgressSentinel
	case statePosted:
		return p.id
	default:
		return ""
	}
}

// IsNotPosted reports the not-yet-posted state.
func (p PostID) IsNotPosted() bool { return p.state == stateNotPosted }

// IsInProgress reports an unconfirmed post.
func (p PostID) IsInProgress() bool { return p.state == stateInProgress }

// ID returns the confirmed post id, if any.
func (p PostID) ID() (string, bool) {
	if p.state != statePosted {
		return "", false
	}
	return p.id, true
}
