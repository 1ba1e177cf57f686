package jsonldb

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxLineBytes bounds the size of a single record line.
const DefaultMaxLineBytes = 64 << 20

// Store reads and writes JSONL record files.
//
// The zero value is ready to use.
type Store struct {
	// MaxLineBytes is the longest line Load accepts. Zero means DefaultMaxLineBytes.
	MaxLineBytes int
}

// Load reads the file at path into a RecordSet.
//
// Blank lines (including whitespace-only lines) are skipped. Any other line that
// is not exactly one JSON value fails the whole load with a *ParseError whose
// Line is 1-based and counts blank lines too, so it matches what an editor shows.
func (s *Store) Load(path string) (RecordSet, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is resolved under the data root by the caller
	if err != nil {
		return nil, &FileAccessError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	maxLine := s.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	rows := RecordSet{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := Compact(line)
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineNo, Text: string(line), Err: err}
		}
		rows = append(rows, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &FileAccessError{Op: "read", Path: path, Err: err}
	}
	return rows, nil
}

// Rewrite replaces the content of path with rows, one compact JSON value per
// line, each newline-terminated.
//
// The data goes to a temporary file in the same directory first and is renamed
// over path once synced, so a failed rewrite leaves the previous content intact.
// The original file mode is preserved when the file already exists.
func (s *Store) Rewrite(path string, rows RecordSet) error {
	var buf bytes.Buffer
	for i, row := range rows {
		rec, err := Compact(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row %d: %w", i, err)
		}
		buf.Write(rec)
		buf.WriteByte('\n')
	}

	perm := fs.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &FileAccessError{Op: "stat", Path: path, Err: err}
	}
	if err := writeFileAtomic(path, buf.Bytes(), perm); err != nil {
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Count returns the number of non-blank lines in path without parsing them.
func (s *Store) Count(path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is resolved under the data root by the caller
	if err != nil {
		return 0, &FileAccessError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()
	r := bufio.NewReader(f)
	n := 0
	blank := true
	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !blank {
					n++
				}
				return n, nil
			}
			return 0, &FileAccessError{Op: "read", Path: path, Err: err}
		}
		switch c {
		case '\n':
			if !blank {
				n++
			}
			blank = true
		case ' ', '\t', '\r':
		default:
			blank = false
		}
	}
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Compact validates that data holds exactly one JSON value and returns it
// without insignificant whitespace.
func Compact(data []byte) (json.RawMessage, error) {
	if !json.Valid(data) {
		// Decode to get a descriptive error with offset.
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return nil, errors.New("invalid JSON")
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	if err := json.Compact(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
