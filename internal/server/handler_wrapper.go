package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	apierrors "github.com/maruel/jsonledit/internal/errors"
)

// maxBodyBytes bounds request bodies; an edit buffer holds one record.
const maxBodyBytes = 64 << 20

// Wrap wraps a handler function to work as an http.Handler.
// The function must have signature: func(context.Context, In) (*Out, error)
// where In can be unmarshalled from JSON and Out is a struct.
// Path parameters can be extracted by tagging struct fields with `path:"name"`,
// query parameters with `query:"name"`. String and integer fields are supported.
//
// Example:
//
//	type GetBufferRequest struct {
//	    Session  string           `path:"id"`
//	    Identity session.Identity `path:"identity"`
//	}
//
//	func (h *SessionHandler) GetBuffer(ctx context.Context, req GetBufferRequest) (*BufferResponse, error)
//
// Errors are mapped to a status code with apierrors.FromError.
func Wrap[In any, Out any](fn func(context.Context, In) (*Out, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		// Read request body
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err2 := r.Body.Close(); err == nil {
			err = err2
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read request body", "err", err)
			writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		var input In
		if len(body) > 0 {
			d := json.NewDecoder(bytes.NewReader(body))
			d.DisallowUnknownFields()
			if err := d.Decode(&input); err != nil {
				slog.ErrorContext(ctx, "Failed to decode request body", "err", err)
				writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
				return
			}
		}

		// Extract path and query parameters and populate request struct
		if err := populateParams(r, &input); err != nil {
			writeErrorResponseWithCode(w, http.StatusBadRequest, apierrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		output, err := fn(ctx, input)
		if err != nil {
			err = apierrors.FromError(err)
			statusCode := http.StatusInternalServerError
			errorCode := apierrors.ErrInternal
			details := make(map[string]any)

			var ewsErr apierrors.ErrorWithStatus
			if errors.As(err, &ewsErr) {
				statusCode = ewsErr.StatusCode()
				errorCode = ewsErr.Code()
				if d := ewsErr.Details(); d != nil {
					details = d
				}
			}

			if statusCode >= http.StatusInternalServerError {
				slog.ErrorContext(ctx, "Handler error", "err", err, "statusCode", statusCode, "code", errorCode)
			} else {
				slog.WarnContext(ctx, "Request rejected", "err", err, "statusCode", statusCode, "code", errorCode)
			}
			writeErrorResponseWithCode(w, statusCode, errorCode, err.Error(), details)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(output); err != nil {
			slog.ErrorContext(ctx, "Failed to encode response", "err", err)
		}
	})
}

// populateParams fills struct fields tagged with `path:"name"` from the route
// pattern and fields tagged with `query:"name"` from the query string.
func populateParams(r *http.Request, input any) error {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Ptr {
		return nil // Skip if not a pointer
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return nil // Skip if not a struct
	}

	query := r.URL.Query()
	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		name, value := "", ""
		if tag := field.Tag.Get("path"); tag != "" {
			name, value = tag, r.PathValue(tag)
		} else if tag := field.Tag.Get("query"); tag != "" {
			name, value = tag, query.Get(tag)
		}
		if value == "" {
			continue
		}
		//nolint:exhaustive // Only string and integer parameters are supported
		switch field.Type.Kind() {
		case reflect.String:
			elem.Field(i).SetString(value)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be an integer", name, value)
			}
			elem.Field(i).SetInt(n)
		default:
		}
	}
	return nil
}

// writeErrorResponse writes an error response for a malformed request as JSON.
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeErrorResponseWithCode(w, statusCode, apierrors.ErrInvalidFormat, message, nil)
}

// writeErrorResponseWithCode writes a detailed error response as JSON with code and details.
func writeErrorResponseWithCode(w http.ResponseWriter, statusCode int, code apierrors.ErrorCode, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}

	if len(details) > 0 {
		response["details"] = details
	}

	_ = json.NewEncoder(w).Encode(response)
}
