package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/maruel/jsonledit/internal/jsonldb"
)

// memStore is an in-memory Store that counts rewrites.
type memStore struct {
	files    map[string]jsonldb.RecordSet
	rewrites int
	fail     error
}

func newMemStore(path string, rows ...string) *memStore {
	rs := jsonldb.RecordSet{}
	for _, r := range rows {
		rs = append(rs, json.RawMessage(r))
	}
	return &memStore{files: map[string]jsonldb.RecordSet{path: rs}}
}

func (m *memStore) Load(path string) (jsonldb.RecordSet, error) {
	rs, ok := m.files[path]
	if !ok {
		return nil, &jsonldb.FileAccessError{Op: "open", Path: path, Err: errNotFound}
	}
	return rs.Clone(), nil
}

func (m *memStore) Rewrite(_ context.Context, path string, rows jsonldb.RecordSet, _ string) error {
	m.rewrites++
	if m.fail != nil {
		return m.fail
	}
	m.files[path] = rows.Clone()
	return nil
}

// diskStore adapts jsonldb.Store for tests that use real files.
type diskStore struct {
	jsonldb.Store
}

func (d *diskStore) Rewrite(_ context.Context, path string, rows jsonldb.RecordSet, _ string) error {
	return d.Store.Rewrite(path, rows)
}

type constError string

func (e constError) Error() string { return string(e) }

const errNotFound = constError("no such file")

func rowsOf(t *testing.T, rs jsonldb.RecordSet) []string {
	t.Helper()
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
