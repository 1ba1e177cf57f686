package handlers

import (
	"context"

	"github.com/maruel/jsonledit/internal/models"
	"github.com/maruel/jsonledit/internal/session"
)

// RequestDelete marks a selected record for deletion.
func (h *SessionHandler) RequestDelete(ctx context.Context, req models.RecordRequest) (*models.ActionResponse, error) {
	return h.do(ctx, req.ID, session.Action{Kind: session.ActionRequestDelete, Identity: req.Identity})
}

// ConfirmDelete removes a record marked for deletion. Without a prior request
// the record is only marked and the status is confirmation_required.
func (h *SessionHandler) ConfirmDelete(ctx context.Context, req models.RecordRequest) (*models.ActionResponse, error) {
	return h.do(ctx, req.ID, session.Action{Kind: session.ActionConfirmDelete, Identity: req.Identity})
}

// CancelDelete clears a pending delete.
func (h *SessionHandler) CancelDelete(ctx context.Context, req models.RecordRequest) (*models.ActionResponse, error) {
	return h.do(ctx, req.ID, session.Action{Kind: session.ActionCancelDelete, Identity: req.Identity})
}
