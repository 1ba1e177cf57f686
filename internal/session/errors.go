package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSelected is returned for an action on an identity outside the selection.
	ErrNotSelected = errors.New("record is not selected")
	// ErrUnknownIdentity is returned for an identity with no record in the session.
	ErrUnknownIdentity = errors.New("unknown record identity")
	// ErrSessionNotFound is returned by Manager for an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidPatch is returned for a merge patch that is not valid JSON.
	ErrInvalidPatch = errors.New("invalid merge patch")
)

// ValidationError reports an edit buffer that is not a single valid JSON value.
// The record it targets is left unmodified.
type ValidationError struct {
	Identity Identity
	Text     string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d: invalid JSON: %v", e.Identity, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// identityError ties a sentinel error to the identity that triggered it.
type identityError struct {
	id  Identity
	err error
}

func (e *identityError) Error() string {
	return fmt.Sprintf("record %d: %v", e.id, e.err)
}

func (e *identityError) Unwrap() error {
	return e.err
}
