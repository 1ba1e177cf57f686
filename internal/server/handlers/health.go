package handlers

import (
	"context"

	"github.com/maruel/jsonledit/internal/models"
	"github.com/maruel/jsonledit/internal/session"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	version  string
	sessions *session.Manager
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string, sessions *session.Manager) *HealthHandler {
	return &HealthHandler{version: version, sessions: sessions}
}

// Health returns the health status of the server.
func (h *HealthHandler) Health(ctx context.Context, req models.HealthRequest) (*models.HealthResponse, error) {
	resp := &models.HealthResponse{Status: "ok", Version: h.version}
	if h.sessions != nil {
		resp.Sessions = h.sessions.Len()
	}
	return resp, nil
}
