package handlers

import (
	"context"
	"strings"

	apierrors "github.com/maruel/jsonledit/internal/errors"
	"github.com/maruel/jsonledit/internal/models"
	"github.com/maruel/jsonledit/internal/storage"
	"github.com/maruel/jsonledit/internal/storage/git"
)

// HistoryHandler serves the commit history of record files.
type HistoryHandler struct {
	repo    *git.Repo
	browser *storage.Browser
}

// NewHistoryHandler creates a new history handler. repo may be nil when
// history is disabled.
func NewHistoryHandler(repo *git.Repo, browser *storage.Browser) *HistoryHandler {
	return &HistoryHandler{repo: repo, browser: browser}
}

// GetHistory lists the commits of one record file, newest first.
func (h *HistoryHandler) GetHistory(ctx context.Context, req models.HistoryRequest) (*models.HistoryResponse, error) {
	if h.repo == nil {
		return nil, apierrors.NotImplemented("history")
	}
	path, err := h.browser.Resolve(req.Folder, req.File)
	if err != nil {
		return nil, err
	}
	commits, err := h.repo.History(ctx, path, req.Limit)
	if err != nil {
		return nil, apierrors.InternalWithError("Failed to read history", err)
	}
	if commits == nil {
		commits = []*git.Commit{}
	}
	return &models.HistoryResponse{Commits: commits}, nil
}

// GetFileVersion returns a record file as it was at a commit.
func (h *HistoryHandler) GetFileVersion(ctx context.Context, req models.FileVersionRequest) (*models.FileVersionResponse, error) {
	if h.repo == nil {
		return nil, apierrors.NotImplemented("history")
	}
	path, err := h.browser.Resolve(req.Folder, req.File)
	if err != nil {
		return nil, err
	}
	hash := req.Hash
	if hash == "" {
		hash = "HEAD"
	}
	raw, err := h.repo.FileAt(ctx, hash, path)
	if err != nil {
		return nil, apierrors.NotFound("version").Wrap(err)
	}
	n := 0
	for line := range strings.Lines(string(raw)) {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return &models.FileVersionResponse{Hash: hash, Content: string(raw), Records: n}, nil
}
