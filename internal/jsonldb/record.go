package jsonldb

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// RecordSet is the ordered content of a JSONL file, one compact JSON value per
// element. Order is load order.
type RecordSet []json.RawMessage

// Clone returns a copy of the slice. Elements are shared; they are never
// mutated in place.
func (rs RecordSet) Clone() RecordSet {
	out := make(RecordSet, len(rs))
	copy(out, rs)
	return out
}

// Pretty returns rec indented with four spaces, the format edit buffers are
// seeded with.
func Pretty(rec json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, rec, "", "    "); err != nil {
		return string(rec)
	}
	return buf.String()
}

// Keys returns up to limit top-level keys of rec in file order, with their
// compact values. ok is false when rec is not a JSON object.
func Keys(rec json.RawMessage, limit int) (keys []string, values []json.RawMessage, ok bool) {
	d := json.NewDecoder(bytes.NewReader(rec))
	tok, err := d.Token()
	if err != nil {
		return nil, nil, false
	}
	if delim, isDelim := tok.(json.Delim); !isDelim || delim != '{' {
		return nil, nil, false
	}
	for d.More() && len(keys) < limit {
		tok, err := d.Token()
		if err != nil {
			return keys, values, true
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := d.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return keys, values, true
		}
		keys = append(keys, key)
		values = append(values, v)
	}
	return keys, values, true
}

// Preview builds a bounded one-line summary of rec: the first maxKeys keys of
// an object, or the compact text of any other value, truncated to maxRunes.
func Preview(rec json.RawMessage, maxKeys, maxRunes int) string {
	var s string
	if keys, values, ok := Keys(rec, maxKeys); ok {
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteString(": ")
			b.Write(values[i])
		}
		b.WriteByte('}')
		s = b.String()
	} else {
		s = string(rec)
	}
	return truncate(s, maxRunes)
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "…"
		}
		n++
	}
	return s
}
