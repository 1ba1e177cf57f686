package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/maruel/jsonledit/internal/jsonldb"
	"github.com/maruel/jsonledit/internal/metrics"
	"github.com/maruel/jsonledit/internal/storage/git"
)

// VersionedStore rewrites record files and, when Repo is set, commits every
// successful rewrite.
type VersionedStore struct {
	Store *jsonldb.Store
	// Repo is optional.
	Repo *git.Repo
}

// Load implements session.Store.
func (v *VersionedStore) Load(path string) (jsonldb.RecordSet, error) {
	return v.Store.Load(path)
}

// Rewrite implements session.Store.
//
// A failed commit is logged and does not fail the rewrite: the file on disk
// is already the new version.
func (v *VersionedStore) Rewrite(ctx context.Context, path string, rows jsonldb.RecordSet, summary string) error {
	start := time.Now()
	err := v.Store.Rewrite(path, rows)
	metrics.RewriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Rewrites.WithLabelValues("error").Inc()
		return err
	}
	metrics.Rewrites.WithLabelValues("ok").Inc()
	if v.Repo == nil {
		return nil
	}
	msg := CommitMessage(summary, v.rel(path), len(rows))
	if _, err := v.Repo.Commit(ctx, msg, path); err != nil {
		slog.WarnContext(ctx, "Failed to commit rewrite", "path", path, "err", err)
	}
	return nil
}

// CommitMessage formats the history entry of one rewrite.
func CommitMessage(summary, rel string, n int) string {
	return fmt.Sprintf("%s: %s (%d record(s))", summary, rel, n)
}

func (v *VersionedStore) rel(path string) string {
	rel, err := filepath.Rel(v.Repo.Dir(), path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
