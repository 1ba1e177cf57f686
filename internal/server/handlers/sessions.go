package handlers

import (
	"context"

	apierrors "github.com/maruel/jsonledit/internal/errors"
	"github.com/maruel/jsonledit/internal/models"
	"github.com/maruel/jsonledit/internal/session"
	"github.com/maruel/jsonledit/internal/storage"
	"github.com/maruel/ksid"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// SessionHandler handles editing sessions and the actions run in them.
type SessionHandler struct {
	sessions *session.Manager
	browser  *storage.Browser
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Manager, browser *storage.Browser) *SessionHandler {
	return &SessionHandler{sessions: sessions, browser: browser}
}

// editor resolves a session ID from the URL.
func (h *SessionHandler) editor(id string) (ksid.ID, *session.Editor, error) {
	sid, err := ksid.Parse(id)
	if err != nil {
		return 0, nil, session.ErrSessionNotFound
	}
	e, err := h.sessions.Get(sid)
	if err != nil {
		return 0, nil, err
	}
	return sid, e, nil
}

func (h *SessionHandler) describe(id ksid.ID, e *session.Editor) *models.SessionResponse {
	snap := e.Snapshot()
	return &models.SessionResponse{
		ID:        id.String(),
		Path:      h.browser.Rel(snap.Path),
		Count:     snap.Count,
		Selection: snap.Selection,
		Dirty:     snap.Dirty,
		Pending:   snap.Pending,
	}
}

// CreateSession opens a record file.
func (h *SessionHandler) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.SessionResponse, error) {
	if req.Folder == "" {
		return nil, apierrors.MissingField("folder")
	}
	if req.File == "" {
		return nil, apierrors.MissingField("file")
	}
	path, err := h.browser.Resolve(req.Folder, req.File)
	if err != nil {
		return nil, err
	}
	id, e, err := h.sessions.Open(path)
	if err != nil {
		return nil, err
	}
	return h.describe(id, e), nil
}

// GetSession returns the selection and buffer status of a session.
func (h *SessionHandler) GetSession(ctx context.Context, req models.SessionRequest) (*models.SessionResponse, error) {
	id, e, err := h.editor(req.ID)
	if err != nil {
		return nil, err
	}
	return h.describe(id, e), nil
}

// CloseSession drops a session and its unsaved buffers.
func (h *SessionHandler) CloseSession(ctx context.Context, req models.SessionRequest) (*models.CloseSessionResponse, error) {
	id, _, err := h.editor(req.ID)
	if err != nil {
		return nil, err
	}
	if err := h.sessions.Close(id); err != nil {
		return nil, err
	}
	return &models.CloseSessionResponse{}, nil
}

// Reload re-reads the file of a session. Identities are renumbered.
func (h *SessionHandler) Reload(ctx context.Context, req models.SessionRequest) (*models.ReloadResponse, error) {
	_, e, err := h.editor(req.ID)
	if err != nil {
		return nil, err
	}
	n, err := e.Reload()
	if err != nil {
		return nil, err
	}
	return &models.ReloadResponse{Count: n}, nil
}

// ListRecords returns one page of record previews, optionally filtered.
func (h *SessionHandler) ListRecords(ctx context.Context, req models.ListRecordsRequest) (*models.ListRecordsResponse, error) {
	_, e, err := h.editor(req.ID)
	if err != nil {
		return nil, err
	}
	f, err := session.CompileFilter(req.Filter)
	if err != nil {
		return nil, apierrors.BadRequest(err.Error())
	}
	entries, err := e.Previews(f)
	if err != nil {
		return nil, apierrors.BadRequest(err.Error())
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset := min(max(req.Offset, 0), len(entries))
	end := min(offset+limit, len(entries))
	page := make([]models.RecordEntry, 0, end-offset)
	for i := range entries[offset:end] {
		e := &entries[offset+i]
		page = append(page, models.RecordEntry{SelectionEntry: *e, Label: e.Label()})
	}
	return &models.ListRecordsResponse{Total: len(entries), Offset: offset, Entries: page}, nil
}

// SetSelection replaces the selection. Any change drops every edit buffer and
// pending delete.
func (h *SessionHandler) SetSelection(ctx context.Context, req models.SetSelectionRequest) (*models.SetSelectionResponse, error) {
	_, e, err := h.editor(req.ID)
	if err != nil {
		return nil, err
	}
	out, err := e.Do(ctx, session.Action{Kind: session.ActionSelect, Identities: req.Identities})
	if err != nil {
		return nil, err
	}
	return &models.SetSelectionResponse{
		Changed:   out.Status == session.StatusOK,
		Cleared:   out.Cleared,
		Selection: e.Snapshot().Selection,
	}, nil
}

// do runs a commit or delete action and reports its outcome.
func (h *SessionHandler) do(ctx context.Context, id string, a session.Action) (*models.ActionResponse, error) {
	_, e, err := h.editor(id)
	if err != nil {
		return nil, err
	}
	out, err := e.Do(ctx, a)
	if err != nil {
		return nil, err
	}
	if out.Affected > 0 {
		h.browser.Changed(e.Path())
	}
	resp := &models.ActionResponse{Status: out.Status, Affected: out.Affected, Count: e.Records().Len()}
	for _, ve := range out.Errors {
		resp.Errors = append(resp.Errors, models.RecordError{Identity: ve.Identity, Message: ve.Err.Error(), Text: ve.Text})
	}
	return resp, nil
}
