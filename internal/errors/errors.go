// Package errors defines structured error types for the API.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/maruel/jsonledit/internal/jsonldb"
	"github.com/maruel/jsonledit/internal/session"
	"github.com/maruel/jsonledit/internal/storage"
)

// ErrorCode defines specific error types for the API.
type ErrorCode string

const (
	// ErrValidationFailed is returned when input data fails validation
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrMissingField is returned when a required field is missing
	ErrMissingField ErrorCode = "MISSING_FIELD"
	// ErrInvalidFormat is returned when a field has an invalid format
	ErrInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrInvalidPath is returned for a folder or file name outside the data root
	ErrInvalidPath ErrorCode = "INVALID_PATH"
	// ErrParseError is returned when a record file contains a line that is not JSON
	ErrParseError ErrorCode = "PARSE_ERROR"
	// ErrInvalidRecord is returned when an edit buffer is not a single JSON value
	ErrInvalidRecord ErrorCode = "INVALID_RECORD"

	// ErrNotFound is returned when a resource is not found
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrSessionNotFound is returned for an unknown or expired editing session
	ErrSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	// ErrRecordNotFound is returned for an identity with no record
	ErrRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// ErrFileNotFound is returned when a file is not found
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	// ErrStorageError is returned when a storage operation fails
	ErrStorageError ErrorCode = "STORAGE_ERROR"

	// ErrInternal is returned when an unexpected server error occurs
	ErrInternal ErrorCode = "INTERNAL_ERROR"
	// ErrNotImplemented is returned when a feature is not enabled
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	// ErrConflict is returned when an action conflicts with the session state
	ErrConflict ErrorCode = "CONFLICT"
	// ErrUnauthorized is returned when authentication is missing or invalid
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrRateLimited is returned when a client sends too many requests
	ErrRateLimited ErrorCode = "RATE_LIMITED"
)

// ErrorWithStatus is an error that includes an HTTP status code and error code.
type ErrorWithStatus interface {
	Error() string
	StatusCode() int
	Code() ErrorCode
	Details() map[string]any
}

// APIError is a concrete error type with status code, code, and optional details.
type APIError struct {
	statusCode int
	code       ErrorCode
	message    string
	details    map[string]any
	wrappedErr error
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, code ErrorCode, message string) *APIError {
	return &APIError{
		statusCode: statusCode,
		code:       code,
		message:    message,
		details:    make(map[string]any),
	}
}

// WithDetail adds a single detail to the error.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// Wrap wraps an underlying error.
func (e *APIError) Wrap(err error) *APIError {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// StatusCode returns the HTTP status code.
func (e *APIError) StatusCode() int {
	return e.statusCode
}

// Code returns the error code.
func (e *APIError) Code() ErrorCode {
	return e.code
}

// Details returns additional error details.
func (e *APIError) Details() map[string]any {
	return e.details
}

// Unwrap returns the wrapped error if any.
func (e *APIError) Unwrap() error {
	return e.wrappedErr
}

// Predefined error constructors for common cases

// NotFound creates a 404 Not Found error.
func NotFound(resource string) *APIError {
	return NewAPIError(http.StatusNotFound, ErrNotFound, fmt.Sprintf("%s not found", resource))
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrValidationFailed, message)
}

// MissingField creates a 400 Bad Request error for a missing field.
func MissingField(fieldName string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrMissingField, fmt.Sprintf("Missing required field: %s", fieldName))
}

// Unauthorized returns a 401 Unauthorized error.
func Unauthorized() *APIError {
	return NewAPIError(http.StatusUnauthorized, ErrUnauthorized, "Unauthorized")
}

// Conflict creates a 409 Conflict error.
func Conflict(message string) *APIError {
	return NewAPIError(http.StatusConflict, ErrConflict, message)
}

// Internal returns a 500 Internal Server Error.
func Internal(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, ErrInternal, message)
}

// InternalWithError creates a 500 error wrapping an underlying error.
func InternalWithError(message string, err error) *APIError {
	return Internal(message).Wrap(err)
}

// NotImplemented creates a 501 Not Implemented error.
func NotImplemented(feature string) *APIError {
	return NewAPIError(http.StatusNotImplemented, ErrNotImplemented, fmt.Sprintf("%s is not enabled", feature))
}

// FromError maps a domain error to an APIError. Errors that already carry a
// status, and errors it does not know, are returned unchanged.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var ews ErrorWithStatus
	if errors.As(err, &ews) {
		return err
	}
	var pe *jsonldb.ParseError
	if errors.As(err, &pe) {
		return NewAPIError(http.StatusUnprocessableEntity, ErrParseError, pe.Error()).
			WithDetail("line", pe.Line).
			WithDetail("text", pe.Text)
	}
	var ve *session.ValidationError
	if errors.As(err, &ve) {
		return NewAPIError(http.StatusUnprocessableEntity, ErrInvalidRecord, ve.Error()).
			WithDetail("identity", ve.Identity).
			WithDetail("text", ve.Text)
	}
	var fae *jsonldb.FileAccessError
	if errors.As(err, &fae) {
		if fae.NotExist() {
			return NewAPIError(http.StatusNotFound, ErrFileNotFound, "file not found").Wrap(err)
		}
		return NewAPIError(http.StatusInternalServerError, ErrStorageError, "storage error").Wrap(err)
	}
	switch {
	case errors.Is(err, session.ErrNotSelected):
		return Conflict(err.Error())
	case errors.Is(err, session.ErrUnknownIdentity):
		return NewAPIError(http.StatusNotFound, ErrRecordNotFound, err.Error())
	case errors.Is(err, session.ErrInvalidPatch):
		return NewAPIError(http.StatusBadRequest, ErrInvalidFormat, err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		return NewAPIError(http.StatusNotFound, ErrSessionNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidPath):
		return NewAPIError(http.StatusBadRequest, ErrInvalidPath, err.Error())
	}
	return err
}
