package session

import (
	"encoding/json"
	"fmt"

	"github.com/maruel/jsonledit/internal/jsonldb"
)

const (
	// PreviewKeys is the number of top-level keys shown in a preview.
	PreviewKeys = 3
	// PreviewRunes bounds the length of a preview.
	PreviewRunes = 120
)

// SelectionEntry is what a user picks from.
type SelectionEntry struct {
	Identity Identity        `json:"identity"`
	Preview  string          `json:"preview"`
	Value    json.RawMessage `json:"value"`
}

// BuildPreviews returns one entry per record, in order.
func BuildPreviews(recs Records) []SelectionEntry {
	out := make([]SelectionEntry, 0, recs.Len())
	for i := range recs.Len() {
		id, v := recs.At(i)
		out = append(out, SelectionEntry{
			Identity: id,
			Preview:  jsonldb.Preview(v, PreviewKeys, PreviewRunes),
			Value:    v,
		})
	}
	return out
}

// Label formats an entry the way a picker lists it.
func (e *SelectionEntry) Label() string {
	return fmt.Sprintf("Line %d: %s", e.Identity, e.Preview)
}

// selectionChanged compares identity sets, ignoring order.
func selectionChanged(prev, next []Identity) bool {
	a := make(map[Identity]struct{}, len(prev))
	for _, id := range prev {
		a[id] = struct{}{}
	}
	b := make(map[Identity]struct{}, len(next))
	for _, id := range next {
		b[id] = struct{}{}
	}
	if len(a) != len(b) {
		return true
	}
	for id := range b {
		if _, ok := a[id]; !ok {
			return true
		}
	}
	return false
}

// onSelectionChanged installs next as the selection. Any change to the set
// drops every edit buffer and pending delete, not only those of removed
// identities.
func onSelectionChanged(st State, next []Identity) (State, bool) {
	changed := selectionChanged(st.Selection, next)
	st.Selection = next
	if changed {
		st.Buffers = map[Identity]string{}
		st.PendingDelete = map[Identity]bool{}
	}
	return st, changed
}

// normalizeSelection drops duplicates and rejects identities with no record.
func normalizeSelection(recs Records, ids []Identity) ([]Identity, error) {
	out := make([]Identity, 0, len(ids))
	seen := make(map[Identity]struct{}, len(ids))
	for _, id := range ids {
		if recs.Index(id) < 0 {
			return nil, &identityError{id: id, err: ErrUnknownIdentity}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
