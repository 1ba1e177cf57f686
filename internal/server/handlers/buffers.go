package handlers

import (
	"context"

	apierrors "github.com/maruel/jsonledit/internal/errors"
	"github.com/maruel/jsonledit/internal/models"
	"github.com/maruel/jsonledit/internal/session"
)

// GetBuffer returns the edit buffer of a selected record, seeding it with the
// indented current value.
func (h *SessionHandler) GetBuffer(ctx context.Context, req models.RecordRequest) (*models.BufferResponse, error) {
	return h.buffer(ctx, req.ID, session.Action{Kind: session.ActionOpen, Identity: req.Identity})
}

// PutBuffer replaces the edit buffer of a selected record. The text is only
// validated on commit.
func (h *SessionHandler) PutBuffer(ctx context.Context, req models.PutBufferRequest) (*models.BufferResponse, error) {
	return h.buffer(ctx, req.ID, session.Action{Kind: session.ActionEdit, Identity: req.Identity, Text: req.Text})
}

// PatchBuffer merges a JSON merge patch into the edit buffer.
func (h *SessionHandler) PatchBuffer(ctx context.Context, req models.PatchBufferRequest) (*models.BufferResponse, error) {
	if len(req.Patch) == 0 {
		return nil, apierrors.MissingField("patch")
	}
	return h.buffer(ctx, req.ID, session.Action{Kind: session.ActionPatch, Identity: req.Identity, Patch: req.Patch})
}

func (h *SessionHandler) buffer(ctx context.Context, id string, a session.Action) (*models.BufferResponse, error) {
	_, e, err := h.editor(id)
	if err != nil {
		return nil, err
	}
	out, err := e.Do(ctx, a)
	if err != nil {
		return nil, err
	}
	return &models.BufferResponse{Identity: a.Identity, Text: out.Buffer}, nil
}

// GetDiff compares the edit buffer with the stored value.
func (h *SessionHandler) GetDiff(ctx context.Context, req models.RecordRequest) (*session.BufferDiff, error) {
	_, e, err := h.editor(req.ID)
	if err != nil {
		return nil, err
	}
	d, err := e.Diff(req.Identity)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CommitBuffer validates the edit buffer of one record and rewrites the file.
func (h *SessionHandler) CommitBuffer(ctx context.Context, req models.RecordRequest) (*models.ActionResponse, error) {
	return h.do(ctx, req.ID, session.Action{Kind: session.ActionCommit, Identity: req.Identity})
}

// CommitAll commits every valid buffer among the requested records in one
// rewrite. Invalid buffers are reported per record.
func (h *SessionHandler) CommitAll(ctx context.Context, req models.CommitAllRequest) (*models.ActionResponse, error) {
	return h.do(ctx, req.ID, session.Action{Kind: session.ActionCommitAll, Identities: req.Identities})
}
