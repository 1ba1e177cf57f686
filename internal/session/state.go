package session

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/maruel/jsonledit/internal/jsonldb"
)

// Identity is the load-time index of a record.
type Identity int

// Records is the in-memory record set of a session together with the identity
// of each surviving record. Identities are strictly increasing with position.
//
// Records values are immutable: mutating helpers return a modified copy.
type Records struct {
	ids  []Identity
	rows jsonldb.RecordSet
}

// NewRecords assigns identities 0..n-1 to rows.
func NewRecords(rows jsonldb.RecordSet) Records {
	ids := make([]Identity, len(rows))
	for i := range ids {
		ids[i] = Identity(i)
	}
	return Records{ids: ids, rows: rows.Clone()}
}

// Len returns the number of records currently held.
func (r Records) Len() int {
	return len(r.rows)
}

// Index returns the current position of id, or -1 if it is not present.
func (r Records) Index(id Identity) int {
	i, found := slices.BinarySearch(r.ids, id)
	if !found {
		return -1
	}
	return i
}

// Value returns the current value of id.
func (r Records) Value(id Identity) (json.RawMessage, bool) {
	i := r.Index(id)
	if i < 0 {
		return nil, false
	}
	return r.rows[i], true
}

// At returns the identity and value at position i.
func (r Records) At(i int) (Identity, json.RawMessage) {
	return r.ids[i], r.rows[i]
}

// RecordSet returns the records in order, as they are persisted.
func (r Records) RecordSet() jsonldb.RecordSet {
	return r.rows.Clone()
}

func (r Records) replace(id Identity, v json.RawMessage) (Records, bool) {
	// Positions are re-derived from the current set right before mutating it.
	i := r.Index(id)
	if i < 0 {
		return r, false
	}
	out := Records{ids: r.ids, rows: r.rows.Clone()}
	out.rows[i] = v
	return out, true
}

func (r Records) remove(id Identity) (Records, bool) {
	i := r.Index(id)
	if i < 0 {
		return r, false
	}
	return Records{
		ids:  slices.Delete(slices.Clone(r.ids), i, i+1),
		rows: slices.Delete(r.rows.Clone(), i, i+1),
	}, true
}

// State is the per-session editing state.
type State struct {
	// Selection is the ordered set of selected identities.
	Selection []Identity
	// Buffers holds the raw edit text per selected identity.
	Buffers map[Identity]string
	// PendingDelete marks identities awaiting delete confirmation.
	PendingDelete map[Identity]bool
}

// NewState returns an empty state.
func NewState() State {
	return State{
		Buffers:       map[Identity]string{},
		PendingDelete: map[Identity]bool{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Selection:     slices.Clone(s.Selection),
		Buffers:       maps.Clone(s.Buffers),
		PendingDelete: maps.Clone(s.PendingDelete),
	}
	if out.Buffers == nil {
		out.Buffers = map[Identity]string{}
	}
	if out.PendingDelete == nil {
		out.PendingDelete = map[Identity]bool{}
	}
	return out
}

// Selected reports whether id is in the selection.
func (s State) Selected(id Identity) bool {
	return slices.Contains(s.Selection, id)
}

// Dirty returns the identities with an edit buffer, sorted.
func (s State) Dirty() []Identity {
	return slices.Sorted(maps.Keys(s.Buffers))
}

// Pending returns the identities awaiting delete confirmation, sorted.
func (s State) Pending() []Identity {
	var out []Identity
	for id, p := range s.PendingDelete {
		if p {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
