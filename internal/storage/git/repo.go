// Records every rewrite of a data file as a commit, using go-git (pure Go, no
// git binary dependency).

// Package git keeps the history of the data directory in a git repository.
package git

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit is one entry of a file history.
type Commit struct {
	Hash        string    `json:"hash"`
	Message     string    `json:"message"`
	Body        string    `json:"body,omitempty"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"author_email"`
	When        time.Time `json:"when"`
}

// Repo is a git repository rooted at the data directory.
type Repo struct {
	dir   string
	name  string
	email string
	repo  *gogit.Repository
	mu    sync.Mutex
}

// Open opens the repository at dir, initializing it when needed.
func Open(dir, name, email string) (*Repo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create repo directory: %w", err)
	}
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repo: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = name
		cfg.User.Email = email
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	return &Repo{dir: dir, name: name, email: email, repo: repo}, nil
}

// Dir returns the working directory.
func (r *Repo) Dir() string {
	return r.dir
}

// Commit stages files and commits them with msg. Paths are absolute or
// relative to Dir. It returns the new commit hash, or "" when nothing changed.
func (r *Repo) Commit(_ context.Context, msg string, files ...string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	rels := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := r.rel(f)
		if err != nil {
			return "", err
		}
		if _, err := w.Add(rel); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", rel, err)
		}
		rels = append(rels, rel)
	}
	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree status: %w", err)
	}
	// Other untracked files in the data directory do not count.
	staged := false
	for _, rel := range rels {
		if c := status.File(rel).Staging; c != gogit.Unmodified && c != gogit.Untracked {
			staged = true
		}
	}
	if !staged {
		return "", nil
	}
	sig := &object.Signature{Name: r.name, Email: r.email, When: time.Now()}
	h, err := w.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return h.String(), nil
}

// History returns up to n commits touching path, newest first. n is capped
// at 1000; n <= 0 means 1000.
func (r *Repo) History(_ context.Context, path string, n int) ([]*Commit, error) {
	if n <= 0 || n > 1000 {
		n = 1000
	}
	opts := &gogit.LogOptions{}
	if path != "" && path != "." {
		rel, err := r.rel(path)
		if err != nil {
			return nil, err
		}
		opts.FileName = &rel
	}
	iter, err := r.repo.Log(opts)
	if err != nil {
		return nil, nil // no commits yet is not an error
	}
	defer iter.Close()

	var commits []*Commit
	for range n {
		c, err := iter.Next()
		if err != nil {
			break
		}
		subject, body, _ := strings.Cut(c.Message, "\n")
		commits = append(commits, &Commit{
			Hash:        c.Hash.String(),
			Message:     subject,
			Body:        strings.TrimSpace(body),
			Author:      c.Author.Name,
			AuthorEmail: c.Author.Email,
			When:        c.Author.When,
		})
	}
	return commits, nil
}

// FileAt returns the content of path at commit hash. "HEAD" is accepted.
func (r *Repo) FileAt(_ context.Context, hash, path string) ([]byte, error) {
	rel, err := r.rel(path)
	if err != nil {
		return nil, err
	}
	h := plumbing.NewHash(hash)
	if hash == "HEAD" {
		ref, err := r.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		h = ref.Hash()
	}
	c, err := r.repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	f, err := c.File(rel)
	if err != nil {
		return nil, fmt.Errorf("failed to get file at commit: %w", err)
	}
	reader, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}

// rel returns path relative to the working directory, slash separated.
func (r *Repo) rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(r.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside of %s", path, r.dir)
	}
	return filepath.ToSlash(rel), nil
}
