package handlers

import (
	"context"
	"errors"
	"io/fs"

	apierrors "github.com/maruel/jsonledit/internal/errors"
	"github.com/maruel/jsonledit/internal/models"
	"github.com/maruel/jsonledit/internal/storage"
)

// FolderHandler lists folders and record files.
type FolderHandler struct {
	browser *storage.Browser
}

// NewFolderHandler creates a new folder handler.
func NewFolderHandler(browser *storage.Browser) *FolderHandler {
	return &FolderHandler{browser: browser}
}

// ListFolders lists the folders of the data root.
func (h *FolderHandler) ListFolders(ctx context.Context, req models.ListFoldersRequest) (*models.ListFoldersResponse, error) {
	folders, err := h.browser.ListFolders()
	if err != nil {
		return nil, apierrors.InternalWithError("Failed to list folders", err)
	}
	return &models.ListFoldersResponse{Folders: folders}, nil
}

// ListFiles lists the record files of a folder.
func (h *FolderHandler) ListFiles(ctx context.Context, req models.ListFilesRequest) (*models.ListFilesResponse, error) {
	files, err := h.browser.ListFiles(req.Folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apierrors.NotFound("folder")
		}
		return nil, err
	}
	return &models.ListFilesResponse{Folder: req.Folder, Files: files}, nil
}
