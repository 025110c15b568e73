// Package history tracks the chain of tracks played in one session.
package history

// Tracker records listened track ids, most recent first. Re-listens are kept.
// Not safe for concurrent use; the session loop owns it.
type Tracker struct {
	ids []string
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// Append records id as the most recent listen.
func (t *Tracker) Append(id string) {
	t.ids = append(t.ids, "")
	copy(t.ids[1:], t.ids)
	t.ids[0] = id
}

// Reset forgets the whole chain.
func (t *Tracker) Reset() {
	t.ids = nil
}

func (t *Tracker) Len() int {
	return len(t.ids)
}

// Snapshot returns a copy, most recent first. Never nil.
func (t *Tracker) Snapshot() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}
