package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maruel/jsonledit/internal/jsonldb"
	"github.com/maruel/jsonledit/internal/metrics"
)

// Store persists the record set of a session.
type Store interface {
	Load(path string) (jsonldb.RecordSet, error)
	// Rewrite replaces the whole file at path with rows. summary describes the
	// change.
	Rewrite(ctx context.Context, path string, rows jsonldb.RecordSet, summary string) error
}

// Editor runs actions against one record file.
//
// It is safe for concurrent use; actions are serialized.
type Editor struct {
	path  string
	store Store

	mu       sync.Mutex
	state    State
	records  Records
	lastUsed time.Time
}

// Snapshot is a read-only view of an editor.
type Snapshot struct {
	Path      string     `json:"path"`
	Count     int        `json:"count"`
	Selection []Identity `json:"selection"`
	Dirty     []Identity `json:"dirty"`
	Pending   []Identity `json:"pending"`
}

// Open loads path and starts a session with an empty selection.
func Open(path string, store Store) (*Editor, error) {
	rows, err := store.Load(path)
	if err != nil {
		return nil, err
	}
	return &Editor{
		path:     path,
		store:    store,
		state:    NewState(),
		records:  NewRecords(rows),
		lastUsed: time.Now(),
	}, nil
}

// Path returns the file being edited.
func (e *Editor) Path() string {
	return e.path
}

// Do applies a. When the action changes records, the file is rewritten exactly
// once and the new state is adopted only if the rewrite succeeded.
func (e *Editor) Do(ctx context.Context, a Action) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = time.Now()

	tr, err := Apply(e.state, e.records, a)
	if err != nil {
		metrics.Actions.WithLabelValues(string(a.Kind), "error").Inc()
		return Outcome{}, err
	}
	if n := len(tr.Outcome.Errors); n > 0 {
		metrics.RecordErrors.Add(float64(n))
	}
	if tr.Effects.Persist {
		if err := e.store.Rewrite(ctx, e.path, tr.Records.RecordSet(), tr.Effects.Summary); err != nil {
			metrics.Actions.WithLabelValues(string(a.Kind), "error").Inc()
			slog.ErrorContext(ctx, "Failed to rewrite records", "path", e.path, "action", a.Kind, "err", err)
			return Outcome{}, err
		}
		slog.InfoContext(ctx, "Rewrote records", "change", tr.Effects.Summary, "path", e.path, "count", tr.Records.Len())
	}
	e.state = tr.State
	e.records = tr.Records
	metrics.Actions.WithLabelValues(string(a.Kind), string(tr.Outcome.Status)).Inc()
	return tr.Outcome, nil
}

// Reload re-reads the file and resets the session. Identities are renumbered
// from zero. On failure the session is unchanged.
func (e *Editor) Reload() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, err := e.store.Load(e.path)
	if err != nil {
		return 0, err
	}
	e.state = NewState()
	e.records = NewRecords(rows)
	e.lastUsed = time.Now()
	return e.records.Len(), nil
}

// Previews lists the records matched by f.
func (e *Editor) Previews(f *Filter) ([]SelectionEntry, error) {
	e.mu.Lock()
	recs := e.records
	e.mu.Unlock()
	return FilterPreviews(BuildPreviews(recs), f)
}

// Records returns the current records.
func (e *Editor) Records() Records {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records
}

// Snapshot returns the current selection and buffer status.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	sel := e.state.Selection
	if sel == nil {
		sel = []Identity{}
	}
	return Snapshot{
		Path:      e.path,
		Count:     e.records.Len(),
		Selection: append([]Identity(nil), sel...),
		Dirty:     e.state.Dirty(),
		Pending:   e.state.Pending(),
	}
}

// Buffers returns a copy of the edit buffers.
func (e *Editor) Buffers() map[Identity]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone().Buffers
}

// Diff compares the current value of id with its edit buffer. An identity
// without a buffer has no changes.
func (e *Editor) Diff(id Identity) (BufferDiff, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := requireSelected(e.state, id); err != nil {
		return BufferDiff{}, err
	}
	v, ok := e.records.Value(id)
	if !ok {
		return BufferDiff{}, &identityError{id: id, err: ErrUnknownIdentity}
	}
	from := jsonldb.Pretty(v)
	to, ok := e.state.Buffers[id]
	if !ok {
		to = from
	}
	return diffText(from, to), nil
}

// LastUsed returns when the editor last served an action.
func (e *Editor) LastUsed() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed
}
