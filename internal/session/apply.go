package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ActionKind names a user action.
type ActionKind string

// Supported actions.
const (
	ActionSelect        ActionKind = "select"
	ActionOpen          ActionKind = "open"
	ActionEdit          ActionKind = "edit"
	ActionPatch         ActionKind = "patch"
	ActionCommit        ActionKind = "commit"
	ActionCommitAll     ActionKind = "commit_all"
	ActionRequestDelete ActionKind = "request_delete"
	ActionConfirmDelete ActionKind = "confirm_delete"
	ActionCancelDelete  ActionKind = "cancel_delete"
)

// Action is one user action against a session.
type Action struct {
	Kind ActionKind
	// Identity is the target of single-record actions.
	Identity Identity
	// Identities is the new selection for ActionSelect, and the records to
	// commit for ActionCommitAll (empty means the whole selection).
	Identities []Identity
	// Text is the new buffer content for ActionEdit.
	Text string
	// Patch is the merge patch for ActionPatch.
	Patch json.RawMessage
}

// Status summarizes the outcome of an action.
type Status string

// Outcome statuses.
const (
	StatusOK                   Status = "ok"
	StatusNoChange             Status = "no_change"
	StatusConfirmationRequired Status = "confirmation_required"
	StatusFailed               Status = "failed"
)

// Effects lists what must happen outside the state for a transition to hold.
type Effects struct {
	// Persist asks for one rewrite of the whole record set.
	Persist bool
	// Summary describes the change for logs and history.
	Summary string
}

// Outcome is the user-facing result of an action.
type Outcome struct {
	Status Status
	// Affected is the number of records updated or deleted.
	Affected int
	// Errors lists per-record failures of a batch commit.
	Errors []*ValidationError
	// Buffer is the edit text for ActionOpen, ActionEdit and ActionPatch.
	Buffer string
	// Cleared is set when a selection change dropped buffers or pending deletes.
	Cleared bool
}

// Transition is the result of applying an action.
type Transition struct {
	State   State
	Records Records
	Effects Effects
	Outcome Outcome
}

// Apply computes the effect of a on (st, recs). Neither input is modified.
//
// An error means the action was rejected as a whole and nothing changed. A
// batch commit with some invalid buffers is not an error: the failures are
// itemized in the outcome.
func Apply(st State, recs Records, a Action) (Transition, error) {
	st = st.Clone()
	tr := Transition{State: st, Records: recs, Outcome: Outcome{Status: StatusOK}}
	switch a.Kind {
	case ActionSelect:
		next, err := normalizeSelection(recs, a.Identities)
		if err != nil {
			return Transition{}, err
		}
		var changed bool
		tr.State, changed = onSelectionChanged(st, next)
		tr.Outcome.Cleared = changed
		if !changed {
			tr.Outcome.Status = StatusNoChange
		}
		return tr, nil

	case ActionOpen:
		text, _, err := buffer(st, recs, a.Identity)
		if err != nil {
			return Transition{}, err
		}
		tr.Outcome.Buffer = text
		return tr, nil

	case ActionEdit:
		if err := requireSelected(st, a.Identity); err != nil {
			return Transition{}, err
		}
		st.Buffers[a.Identity] = a.Text
		tr.Outcome.Buffer = a.Text
		return tr, nil

	case ActionPatch:
		text, err := mergeBuffer(st, recs, a.Identity, a.Patch)
		if err != nil {
			return Transition{}, err
		}
		st.Buffers[a.Identity] = text
		tr.Outcome.Buffer = text
		return tr, nil

	case ActionCommit:
		return commitOne(st, recs, a.Identity)

	case ActionCommitAll:
		return commitAll(st, recs, a.Identities)

	case ActionRequestDelete:
		if err := requireSelected(st, a.Identity); err != nil {
			return Transition{}, err
		}
		st.PendingDelete[a.Identity] = true
		tr.Outcome.Status = StatusConfirmationRequired
		return tr, nil

	case ActionCancelDelete:
		if err := requireSelected(st, a.Identity); err != nil {
			return Transition{}, err
		}
		if !st.PendingDelete[a.Identity] {
			tr.Outcome.Status = StatusNoChange
		}
		delete(st.PendingDelete, a.Identity)
		return tr, nil

	case ActionConfirmDelete:
		return confirmDelete(st, recs, a.Identity)

	default:
		return Transition{}, fmt.Errorf("unknown action %q", a.Kind)
	}
}

// commitOne parses the buffer of id and, if valid, replaces the record at the
// same position.
func commitOne(st State, recs Records, id Identity) (Transition, error) {
	text, _, err := buffer(st, recs, id)
	if err != nil {
		return Transition{}, err
	}
	v, err := parseBuffer(id, text)
	if err != nil {
		return Transition{}, err
	}
	next, ok := recs.replace(id, v)
	if !ok {
		return Transition{}, &identityError{id: id, err: ErrUnknownIdentity}
	}
	delete(st.Buffers, id)
	return Transition{
		State:   st,
		Records: next,
		Effects: Effects{Persist: true, Summary: fmt.Sprintf("update record %d", id)},
		Outcome: Outcome{Status: StatusOK, Affected: 1},
	}, nil
}

// commitAll applies every valid buffer among ids in one rewrite. Invalid
// buffers are reported and their records left untouched. Nothing is persisted
// when no buffer parses.
func commitAll(st State, recs Records, ids []Identity) (Transition, error) {
	if len(ids) == 0 {
		ids = slices.Clone(st.Selection)
	}
	for _, id := range ids {
		if err := requireSelected(st, id); err != nil {
			return Transition{}, err
		}
	}
	type staged struct {
		id Identity
		v  json.RawMessage
	}
	var ok []staged
	var failed []*ValidationError
	seen := map[Identity]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		text, _, err := buffer(st, recs, id)
		if err != nil {
			return Transition{}, err
		}
		v, err := parseBuffer(id, text)
		if err != nil {
			var ve *ValidationError
			if !errors.As(err, &ve) {
				return Transition{}, err
			}
			failed = append(failed, ve)
			continue
		}
		ok = append(ok, staged{id: id, v: v})
	}
	if len(ok) == 0 {
		status := StatusNoChange
		if len(failed) > 0 {
			status = StatusFailed
		}
		// Seeded buffers are kept so the user sees what was rejected.
		return Transition{State: st, Records: recs, Outcome: Outcome{Status: status, Errors: failed}}, nil
	}
	next := recs
	for _, s := range ok {
		var found bool
		if next, found = next.replace(s.id, s.v); !found {
			return Transition{}, &identityError{id: s.id, err: ErrUnknownIdentity}
		}
		delete(st.Buffers, s.id)
	}
	return Transition{
		State:   st,
		Records: next,
		Effects: Effects{Persist: true, Summary: fmt.Sprintf("update %d record(s)", len(ok))},
		Outcome: Outcome{Status: StatusOK, Affected: len(ok), Errors: failed},
	}, nil
}

// confirmDelete removes id if a delete was requested for it. Without a prior
// request nothing is removed and id becomes pending instead.
func confirmDelete(st State, recs Records, id Identity) (Transition, error) {
	if err := requireSelected(st, id); err != nil {
		return Transition{}, err
	}
	if !st.PendingDelete[id] {
		st.PendingDelete[id] = true
		return Transition{State: st, Records: recs, Outcome: Outcome{Status: StatusConfirmationRequired}}, nil
	}
	next, ok := recs.remove(id)
	if !ok {
		return Transition{}, &identityError{id: id, err: ErrUnknownIdentity}
	}
	// A reload renumbers everything after id, so that part of the state is
	// dropped. Identities before id keep their buffers and pending flags.
	st.Selection = slices.DeleteFunc(st.Selection, func(s Identity) bool { return s >= id })
	maps.DeleteFunc(st.Buffers, func(s Identity, _ string) bool { return s >= id })
	maps.DeleteFunc(st.PendingDelete, func(s Identity, _ bool) bool { return s >= id })
	return Transition{
		State:   st,
		Records: next,
		Effects: Effects{Persist: true, Summary: fmt.Sprintf("delete record %d", id)},
		Outcome: Outcome{Status: StatusOK, Affected: 1},
	}, nil
}
