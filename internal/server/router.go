// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/maruel/jsonledit/internal/server/handlers"
	"github.com/maruel/jsonledit/internal/server/ratelimit"
	"github.com/maruel/jsonledit/internal/session"
	"github.com/maruel/jsonledit/internal/storage"
	"github.com/maruel/jsonledit/internal/storage/git"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the dependencies of the router.
type Config struct {
	Sessions *session.Manager
	Browser  *storage.Browser
	// Repo is nil when history is disabled.
	Repo    *git.Repo
	Version string
	// JWTSecret enables bearer token auth on /api/ when set.
	JWTSecret []byte
	// Limiter throttles mutating requests when set.
	Limiter *ratelimit.Limiter
}

// NewRouter creates and configures the HTTP router.
// Serves API endpoints at /api/v1/* and Prometheus metrics at /metrics.
func NewRouter(cfg *Config) http.Handler {
	mux := &http.ServeMux{}
	hh := handlers.NewHealthHandler(cfg.Version, cfg.Sessions)
	fh := handlers.NewFolderHandler(cfg.Browser)
	sh := handlers.NewSessionHandler(cfg.Sessions, cfg.Browser)
	histh := handlers.NewHistoryHandler(cfg.Repo, cfg.Browser)
	schh := &handlers.SchemaHandler{}

	// Health check
	mux.Handle("GET /api/v1/health", Wrap(hh.Health))

	// Discovery
	mux.Handle("GET /api/v1/folders", Wrap(fh.ListFolders))
	mux.Handle("GET /api/v1/folders/{folder}/files", Wrap(fh.ListFiles))
	mux.Handle("GET /api/v1/history", Wrap(histh.GetHistory))
	mux.Handle("GET /api/v1/history/content", Wrap(histh.GetFileVersion))
	mux.Handle("GET /api/v1/schema/{name}", Wrap(schh.GetSchema))

	// Sessions
	mux.Handle("POST /api/v1/sessions", Wrap(sh.CreateSession))
	mux.Handle("GET /api/v1/sessions/{id}", Wrap(sh.GetSession))
	mux.Handle("DELETE /api/v1/sessions/{id}", Wrap(sh.CloseSession))
	mux.Handle("POST /api/v1/sessions/{id}/reload", Wrap(sh.Reload))
	mux.Handle("GET /api/v1/sessions/{id}/records", Wrap(sh.ListRecords))
	mux.Handle("PUT /api/v1/sessions/{id}/selection", Wrap(sh.SetSelection))

	// Edit buffers
	mux.Handle("GET /api/v1/sessions/{id}/buffers/{identity}", Wrap(sh.GetBuffer))
	mux.Handle("PUT /api/v1/sessions/{id}/buffers/{identity}", Wrap(sh.PutBuffer))
	mux.Handle("PATCH /api/v1/sessions/{id}/buffers/{identity}", Wrap(sh.PatchBuffer))
	mux.Handle("GET /api/v1/sessions/{id}/buffers/{identity}/diff", Wrap(sh.GetDiff))
	mux.Handle("POST /api/v1/sessions/{id}/buffers/{identity}/commit", Wrap(sh.CommitBuffer))
	mux.Handle("POST /api/v1/sessions/{id}/commit", Wrap(sh.CommitAll))

	// Deletes
	mux.Handle("POST /api/v1/sessions/{id}/records/{identity}/delete", Wrap(sh.RequestDelete))
	mux.Handle("POST /api/v1/sessions/{id}/records/{identity}/confirm", Wrap(sh.ConfirmDelete))
	mux.Handle("POST /api/v1/sessions/{id}/records/{identity}/cancel", Wrap(sh.CancelDelete))

	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	if cfg.Limiter != nil {
		h = ratelimit.Middleware(cfg.Limiter, h)
	}
	if len(cfg.JWTSecret) != 0 {
		h = AuthMiddleware(cfg.JWTSecret)(h)
	}
	return LogRequests(h)
}
