package session

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/maruel/jsonledit/internal/jsonldb"
)

func records(rows ...string) Records {
	rs := jsonldb.RecordSet{}
	for _, r := range rows {
		rs = append(rs, json.RawMessage(r))
	}
	return NewRecords(rs)
}

func mustApply(t *testing.T, st State, recs Records, a Action) Transition {
	t.Helper()
	tr, err := Apply(st, recs, a)
	if err != nil {
		t.Fatalf("Apply(%s) failed: %v", a.Kind, err)
	}
	return tr
}

func TestApply(t *testing.T) {
	t.Run("select", func(t *testing.T) {
		recs := records(`{"a":1}`, `{"b":2}`, `{"c":3}`)
		tr := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{2, 0, 2}})
		if !slices.Equal(tr.State.Selection, []Identity{2, 0}) {
			t.Errorf("Selection = %v", tr.State.Selection)
		}
		if tr.Effects.Persist {
			t.Error("select must not persist")
		}
		if _, err := Apply(tr.State, recs, Action{Kind: ActionSelect, Identities: []Identity{7}}); !errors.Is(err, ErrUnknownIdentity) {
			t.Errorf("select unknown: err = %v", err)
		}
	})

	t.Run("selection change clears buffers", func(t *testing.T) {
		recs := records(`{"a":1}`, `{"b":2}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 0, Text: `{"a":99}`}).State
		st = mustApply(t, st, recs, Action{Kind: ActionRequestDelete, Identity: 0}).State

		tr := mustApply(t, st, recs, Action{Kind: ActionSelect, Identities: []Identity{0, 1}})
		if !tr.Outcome.Cleared {
			t.Error("Cleared = false")
		}
		if len(tr.State.Buffers) != 0 || len(tr.State.PendingDelete) != 0 {
			t.Errorf("state not cleared: %+v", tr.State)
		}
		open := mustApply(t, tr.State, recs, Action{Kind: ActionOpen, Identity: 0})
		if want := "{\n    \"a\": 1\n}"; open.Outcome.Buffer != want {
			t.Errorf("buffer = %q, want %q", open.Outcome.Buffer, want)
		}
	})

	t.Run("same selection keeps buffers", func(t *testing.T) {
		recs := records(`{"a":1}`, `{"b":2}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0, 1}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 1, Text: "x"}).State
		tr := mustApply(t, st, recs, Action{Kind: ActionSelect, Identities: []Identity{1, 0}})
		if tr.Outcome.Status != StatusNoChange {
			t.Errorf("Status = %s", tr.Outcome.Status)
		}
		if tr.State.Buffers[1] != "x" {
			t.Errorf("buffer lost: %v", tr.State.Buffers)
		}
	})

	t.Run("edit requires selection", func(t *testing.T) {
		recs := records(`{"a":1}`)
		for _, k := range []ActionKind{ActionOpen, ActionEdit, ActionCommit, ActionRequestDelete, ActionConfirmDelete} {
			if _, err := Apply(NewState(), recs, Action{Kind: k, Identity: 0, Text: "{}"}); !errors.Is(err, ErrNotSelected) {
				t.Errorf("%s: err = %v, want ErrNotSelected", k, err)
			}
		}
	})

	t.Run("inputs are not modified", func(t *testing.T) {
		recs := records(`{"a":1}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 0, Text: `{"a":2}`}).State
		tr := mustApply(t, st, recs, Action{Kind: ActionCommit, Identity: 0})
		if _, ok := st.Buffers[0]; !ok {
			t.Error("input state lost its buffer")
		}
		if v, _ := recs.Value(0); string(v) != `{"a":1}` {
			t.Errorf("input records modified: %s", v)
		}
		if v, _ := tr.Records.Value(0); string(v) != `{"a":2}` {
			t.Errorf("committed value = %s", v)
		}
	})

	t.Run("commit invalid buffer", func(t *testing.T) {
		recs := records(`{"a":1}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 0, Text: `{"a":`}).State
		_, err := Apply(st, recs, Action{Kind: ActionCommit, Identity: 0})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("err = %v, want *ValidationError", err)
		}
		if ve.Identity != 0 || ve.Text != `{"a":` {
			t.Errorf("ValidationError = %+v", ve)
		}
	})

	t.Run("commit without edit writes current value", func(t *testing.T) {
		recs := records(`{"a":1}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0}}).State
		tr := mustApply(t, st, recs, Action{Kind: ActionCommit, Identity: 0})
		if !tr.Effects.Persist {
			t.Error("Persist = false")
		}
		if v, _ := tr.Records.Value(0); string(v) != `{"a":1}` {
			t.Errorf("value = %s", v)
		}
	})

	t.Run("patch", func(t *testing.T) {
		recs := records(`{"a":1,"b":2}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0}}).State
		tr := mustApply(t, st, recs, Action{Kind: ActionPatch, Identity: 0, Patch: json.RawMessage(`{"b":null,"c":3}`)})
		if want := "{\n    \"a\": 1,\n    \"c\": 3\n}"; tr.Outcome.Buffer != want {
			t.Errorf("buffer = %q, want %q", tr.Outcome.Buffer, want)
		}
		if tr.Effects.Persist {
			t.Error("patch must not persist")
		}
		if _, err := Apply(st, recs, Action{Kind: ActionPatch, Identity: 0, Patch: json.RawMessage(`{`)}); !errors.Is(err, ErrInvalidPatch) {
			t.Error("invalid patch accepted")
		}
	})

	t.Run("partial batch commit", func(t *testing.T) {
		recs := records(`{"a":1}`, `{"b":2}`, `{"c":3}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0, 1, 2}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 0, Text: `{"a":10}`}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 1, Text: `{"b":`}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 2, Text: `{"c":30}`}).State

		tr := mustApply(t, st, recs, Action{Kind: ActionCommitAll})
		if !tr.Effects.Persist || tr.Outcome.Affected != 2 {
			t.Errorf("Persist = %t, Affected = %d", tr.Effects.Persist, tr.Outcome.Affected)
		}
		if len(tr.Outcome.Errors) != 1 || tr.Outcome.Errors[0].Identity != 1 {
			t.Fatalf("Errors = %v", tr.Outcome.Errors)
		}
		got := rowsOf(t, tr.Records.RecordSet())
		want := []string{`{"a":10}`, `{"b":2}`, `{"c":30}`}
		if !slices.Equal(got, want) {
			t.Errorf("records = %v, want %v", got, want)
		}
		if !slices.Equal(tr.State.Dirty(), []Identity{1}) {
			t.Errorf("Dirty = %v", tr.State.Dirty())
		}
	})

	t.Run("batch commit all invalid", func(t *testing.T) {
		recs := records(`{"a":1}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 0, Text: `nope`}).State
		tr := mustApply(t, st, recs, Action{Kind: ActionCommitAll})
		if tr.Effects.Persist || tr.Outcome.Status != StatusFailed {
			t.Errorf("Persist = %t, Status = %s", tr.Effects.Persist, tr.Outcome.Status)
		}
	})

	t.Run("batch commit empty selection", func(t *testing.T) {
		tr := mustApply(t, NewState(), records(`1`), Action{Kind: ActionCommitAll})
		if tr.Effects.Persist || tr.Outcome.Status != StatusNoChange {
			t.Errorf("Persist = %t, Status = %s", tr.Effects.Persist, tr.Outcome.Status)
		}
	})

	t.Run("delete needs confirmation", func(t *testing.T) {
		recs := records(`{"a":1}`, `{"b":2}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0}}).State

		tr := mustApply(t, st, recs, Action{Kind: ActionConfirmDelete, Identity: 0})
		if tr.Effects.Persist || tr.Outcome.Status != StatusConfirmationRequired || tr.Records.Len() != 2 {
			t.Fatalf("unrequested confirm: %+v", tr.Outcome)
		}
		tr = mustApply(t, tr.State, recs, Action{Kind: ActionConfirmDelete, Identity: 0})
		if !tr.Effects.Persist || tr.Records.Len() != 1 {
			t.Fatalf("second confirm: Persist = %t, Len = %d", tr.Effects.Persist, tr.Records.Len())
		}
	})

	t.Run("confirm keeps earlier pending deletes", func(t *testing.T) {
		recs := records(`{"a":1}`, `{"b":2}`, `{"c":3}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0, 2}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 0, Text: `{"a":10}`}).State
		st = mustApply(t, st, recs, Action{Kind: ActionRequestDelete, Identity: 0}).State
		st = mustApply(t, st, recs, Action{Kind: ActionRequestDelete, Identity: 2}).State
		tr := mustApply(t, st, recs, Action{Kind: ActionConfirmDelete, Identity: 2})
		if !tr.Effects.Persist || tr.Records.Len() != 2 {
			t.Fatalf("confirm: Persist = %t, Len = %d", tr.Effects.Persist, tr.Records.Len())
		}
		if got := tr.State.Pending(); !slices.Equal(got, []Identity{0}) {
			t.Errorf("Pending() = %v, want [0]", got)
		}
		if got := tr.State.Buffers[0]; got != `{"a":10}` {
			t.Errorf("Buffers[0] = %q", got)
		}
		if !slices.Equal(tr.State.Selection, []Identity{0}) {
			t.Errorf("Selection = %v", tr.State.Selection)
		}

		// The surviving pending delete still completes.
		tr = mustApply(t, tr.State, tr.Records, Action{Kind: ActionConfirmDelete, Identity: 0})
		if !tr.Effects.Persist || !slices.Equal(rowsOf(t, tr.Records.RecordSet()), []string{`{"b":2}`}) {
			t.Errorf("second confirm: Persist = %t, records = %v", tr.Effects.Persist, rowsOf(t, tr.Records.RecordSet()))
		}
	})

	t.Run("cancel delete", func(t *testing.T) {
		recs := records(`{"a":1}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionRequestDelete, Identity: 0}).State
		if !slices.Equal(st.Pending(), []Identity{0}) {
			t.Fatalf("Pending = %v", st.Pending())
		}
		st = mustApply(t, st, recs, Action{Kind: ActionCancelDelete, Identity: 0}).State
		tr := mustApply(t, st, recs, Action{Kind: ActionConfirmDelete, Identity: 0})
		if tr.Effects.Persist {
			t.Error("confirm after cancel deleted the record")
		}
		if tr := mustApply(t, NewState().withSelection(0), recs, Action{Kind: ActionCancelDelete, Identity: 0}); tr.Outcome.Status != StatusNoChange {
			t.Errorf("cancel without request: Status = %s", tr.Outcome.Status)
		}
	})

	t.Run("delete keeps identities stable", func(t *testing.T) {
		recs := records(`{"a":1}`, `{"b":2}`, `{"c":3}`, `{"d":4}`)
		st := mustApply(t, NewState(), recs, Action{Kind: ActionSelect, Identities: []Identity{0, 1, 3}}).State
		st = mustApply(t, st, recs, Action{Kind: ActionEdit, Identity: 3, Text: `{"d":40}`}).State
		st = mustApply(t, st, recs, Action{Kind: ActionRequestDelete, Identity: 1}).State
		tr := mustApply(t, st, recs, Action{Kind: ActionConfirmDelete, Identity: 1})
		if !slices.Equal(tr.State.Selection, []Identity{0}) {
			t.Errorf("Selection = %v", tr.State.Selection)
		}
		if len(tr.State.Buffers) != 0 {
			t.Errorf("Buffers = %v", tr.State.Buffers)
		}
		if i := tr.Records.Index(3); i != 2 {
			t.Errorf("Index(3) = %d, want 2", i)
		}
		if tr.Records.Index(1) != -1 {
			t.Error("deleted identity still resolves")
		}

		// A record after the deleted one is still addressed by its identity.
		st = mustApply(t, tr.State, tr.Records, Action{Kind: ActionSelect, Identities: []Identity{3}}).State
		st = mustApply(t, st, tr.Records, Action{Kind: ActionEdit, Identity: 3, Text: `{"d":40}`}).State
		tr = mustApply(t, st, tr.Records, Action{Kind: ActionCommit, Identity: 3})
		got := rowsOf(t, tr.Records.RecordSet())
		want := []string{`{"a":1}`, `{"c":3}`, `{"d":40}`}
		if !slices.Equal(got, want) {
			t.Errorf("records = %v, want %v", got, want)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		if _, err := Apply(NewState(), records(), Action{Kind: "rename"}); err == nil {
			t.Error("unknown action accepted")
		}
	})
}

func (s State) withSelection(ids ...Identity) State {
	s.Selection = ids
	return s
}
