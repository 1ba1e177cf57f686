package jsonldb

import (
	"errors"
	"fmt"
	"io/fs"
)

// ParseError reports a line that is not a single valid JSON value.
type ParseError struct {
	Path string
	Line int // 1-based
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid JSON: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FileAccessError reports a file that could not be opened, read or written.
type FileAccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// NotExist reports whether the failure is due to a missing file.
func (e *FileAccessError) NotExist() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}
