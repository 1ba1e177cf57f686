package session

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/maruel/jsonledit/internal/jsonldb"
)

func requireSelected(st State, id Identity) error {
	if !st.Selected(id) {
		return &identityError{id: id, err: ErrNotSelected}
	}
	return nil
}

// buffer returns the edit text for id, seeding it from the current value when
// absent. seeded reports whether st.Buffers was modified.
func buffer(st State, recs Records, id Identity) (text string, seeded bool, err error) {
	if err := requireSelected(st, id); err != nil {
		return "", false, err
	}
	if text, ok := st.Buffers[id]; ok {
		return text, false, nil
	}
	v, ok := recs.Value(id)
	if !ok {
		return "", false, &identityError{id: id, err: ErrUnknownIdentity}
	}
	text = jsonldb.Pretty(v)
	st.Buffers[id] = text
	return text, true, nil
}

// parseBuffer validates text as one JSON value.
func parseBuffer(id Identity, text string) (json.RawMessage, error) {
	v, err := jsonldb.Compact([]byte(text))
	if err != nil {
		return nil, &ValidationError{Identity: id, Text: text, Err: err}
	}
	return v, nil
}

// mergeBuffer applies an RFC 7386 merge patch to the buffer of id and returns
// the re-indented result.
func mergeBuffer(st State, recs Records, id Identity, patch json.RawMessage) (string, error) {
	text, _, err := buffer(st, recs, id)
	if err != nil {
		return "", err
	}
	doc, err := parseBuffer(id, text)
	if err != nil {
		return "", err
	}
	if _, err := jsonldb.Compact(patch); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return jsonldb.Pretty(merged), nil
}
