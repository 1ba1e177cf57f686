// Package models defines the request and response types of the HTTP API.
package models

import (
	"encoding/json"

	"github.com/maruel/jsonledit/internal/session"
	"github.com/maruel/jsonledit/internal/storage"
	"github.com/maruel/jsonledit/internal/storage/git"
)

// HealthRequest is a request to check server health.
type HealthRequest struct{}

// HealthResponse is a response from the health check.
type HealthResponse struct {
	Status   string `json:"status" jsonschema:"description=Always ok"`
	Version  string `json:"version" jsonschema:"description=Server build version"`
	Sessions int    `json:"sessions" jsonschema:"description=Number of open editing sessions"`
}

// ListFoldersRequest is a request to list the folders of the data root.
type ListFoldersRequest struct{}

// ListFoldersResponse lists folder names.
type ListFoldersResponse struct {
	Folders []string `json:"folders"`
}

// ListFilesRequest is a request to list the record files of a folder.
type ListFilesRequest struct {
	Folder string `json:"-" path:"folder"`
}

// ListFilesResponse lists record files.
type ListFilesResponse struct {
	Folder string             `json:"folder"`
	Files  []storage.FileInfo `json:"files"`
}

// CreateSessionRequest opens a record file for editing.
type CreateSessionRequest struct {
	Folder string `json:"folder" jsonschema:"description=Folder under the data root"`
	File   string `json:"file" jsonschema:"description=Record file name ending with .jsonl"`
}

// SessionRequest addresses a session.
type SessionRequest struct {
	ID string `json:"-" path:"id"`
}

// SessionResponse describes a session.
type SessionResponse struct {
	ID        string             `json:"id" jsonschema:"description=Session identifier"`
	Path      string             `json:"path" jsonschema:"description=File path relative to the data root"`
	Count     int                `json:"count" jsonschema:"description=Number of records currently held"`
	Selection []session.Identity `json:"selection" jsonschema:"description=Selected record identities in selection order"`
	Dirty     []session.Identity `json:"dirty" jsonschema:"description=Identities with an open edit buffer"`
	Pending   []session.Identity `json:"pending" jsonschema:"description=Identities awaiting delete confirmation"`
}

// CloseSessionResponse acknowledges a closed session.
type CloseSessionResponse struct{}

// ReloadResponse is returned after a session re-read its file.
type ReloadResponse struct {
	Count int `json:"count"`
}

// ListRecordsRequest lists record previews.
type ListRecordsRequest struct {
	ID     string `json:"-" path:"id"`
	Filter string `json:"-" query:"filter"`
	Offset int    `json:"-" query:"offset"`
	Limit  int    `json:"-" query:"limit"`
}

// RecordEntry is one record of a listing, as a picker shows it.
type RecordEntry struct {
	session.SelectionEntry
	Label string `json:"label" jsonschema:"description=Line number and preview"`
}

// ListRecordsResponse is one page of record previews.
type ListRecordsResponse struct {
	Total   int           `json:"total" jsonschema:"description=Number of records matching the filter"`
	Offset  int           `json:"offset"`
	Entries []RecordEntry `json:"entries"`
}

// SetSelectionRequest replaces the selection.
type SetSelectionRequest struct {
	ID         string             `json:"-" path:"id"`
	Identities []session.Identity `json:"identities" jsonschema:"description=New selection; duplicates are ignored"`
}

// SetSelectionResponse reports the effect of a selection change.
type SetSelectionResponse struct {
	Changed   bool               `json:"changed"`
	Cleared   bool               `json:"cleared" jsonschema:"description=Edit buffers and pending deletes were dropped"`
	Selection []session.Identity `json:"selection"`
}

// RecordRequest addresses one record of a session.
type RecordRequest struct {
	ID       string           `json:"-" path:"id"`
	Identity session.Identity `json:"-" path:"identity"`
}

// PutBufferRequest replaces the edit buffer of a record.
type PutBufferRequest struct {
	ID       string           `json:"-" path:"id"`
	Identity session.Identity `json:"-" path:"identity"`
	Text     string           `json:"text" jsonschema:"description=Raw edit text; validated on commit"`
}

// PatchBufferRequest merges an RFC 7386 patch into the edit buffer of a record.
type PatchBufferRequest struct {
	ID       string           `json:"-" path:"id"`
	Identity session.Identity `json:"-" path:"identity"`
	Patch    json.RawMessage  `json:"patch" jsonschema:"description=JSON merge patch"`
}

// BufferResponse is the edit buffer of a record.
type BufferResponse struct {
	Identity session.Identity `json:"identity"`
	Text     string           `json:"text"`
}

// CommitAllRequest commits several edit buffers in one rewrite.
type CommitAllRequest struct {
	ID         string             `json:"-" path:"id"`
	Identities []session.Identity `json:"identities,omitempty" jsonschema:"description=Records to commit; empty means the whole selection"`
}

// RecordError is a per-record commit failure.
type RecordError struct {
	Identity session.Identity `json:"identity"`
	Message  string           `json:"message"`
	Text     string           `json:"text" jsonschema:"description=Rejected edit buffer"`
}

// ActionResponse reports the outcome of a commit or delete action.
type ActionResponse struct {
	Status   session.Status `json:"status" jsonschema:"enum=ok,enum=no_change,enum=confirmation_required,enum=failed"`
	Affected int            `json:"affected" jsonschema:"description=Number of records updated or deleted"`
	Errors   []RecordError  `json:"errors,omitempty"`
	Count    int            `json:"count" jsonschema:"description=Number of records after the action"`
}

// HistoryRequest lists the commits of a record file.
type HistoryRequest struct {
	Folder string `json:"-" query:"folder"`
	File   string `json:"-" query:"file"`
	Limit  int    `json:"-" query:"limit"`
}

// HistoryResponse lists commits, newest first.
type HistoryResponse struct {
	Commits []*git.Commit `json:"commits"`
}

// SchemaRequest asks for the JSON schema of an API type.
type SchemaRequest struct {
	Name string `json:"-" path:"name"`
}

// FileVersionRequest asks for a record file as of one commit.
type FileVersionRequest struct {
	Folder string `json:"-" query:"folder"`
	File   string `json:"-" query:"file"`
	Hash   string `json:"-" query:"hash"`
}

// FileVersionResponse is the content of a record file at a commit.
type FileVersionResponse struct {
	Hash    string `json:"hash" jsonschema:"description=Requested commit; HEAD when omitted"`
	Content string `json:"content"`
	Records int    `json:"records" jsonschema:"description=Number of non-blank lines"`
}
