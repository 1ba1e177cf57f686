package git

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepo(t *testing.T) {
	t.Parallel()

	t.Run("Init", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if _, err := Open(dir, "Test User", "test@example.com"); err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
			t.Errorf(".git directory not created: %v", err)
		}
		// Opening again reuses the repository.
		if _, err := Open(dir, "Other", "other@example.com"); err != nil {
			t.Fatalf("second Open() failed: %v", err)
		}
	})

	t.Run("Commit", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		ctx := t.Context()
		repo, err := Open(dir, "Test User", "test@example.com")
		if err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, "logs", "a.jsonl")
		if err := os.WriteFile(path, []byte("{\"a\":1}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		h1, err := repo.Commit(ctx, "create: logs/a.jsonl", path)
		if err != nil || h1 == "" {
			t.Fatalf("Commit() = %q, %v", h1, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if h, err := repo.Commit(ctx, "noop", path); err != nil || h != "" {
			t.Errorf("Commit() without changes = %q, %v", h, err)
		}
		if err := os.WriteFile(path, []byte("{\"a\":2}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		h2, err := repo.Commit(ctx, "update record 0: logs/a.jsonl (1 record(s))\n\ndetails", "logs/a.jsonl")
		if err != nil || h2 == "" || h2 == h1 {
			t.Fatalf("second Commit() = %q, %v", h2, err)
		}

		hist, err := repo.History(ctx, path, 10)
		if err != nil {
			t.Fatalf("History() failed: %v", err)
		}
		if len(hist) != 2 {
			t.Fatalf("len(History()) = %d, want 2", len(hist))
		}
		if hist[0].Hash != h2 || hist[0].Message != "update record 0: logs/a.jsonl (1 record(s))" || hist[0].Body != "details" {
			t.Errorf("History()[0] = %+v", hist[0])
		}
		if hist[0].Author != "Test User" {
			t.Errorf("Author = %q", hist[0].Author)
		}

		old, err := repo.FileAt(ctx, h1, path)
		if err != nil || string(old) != "{\"a\":1}\n" {
			t.Errorf("FileAt(h1) = %q, %v", old, err)
		}
		head, err := repo.FileAt(ctx, "HEAD", "logs/a.jsonl")
		if err != nil || string(head) != "{\"a\":2}\n" {
			t.Errorf("FileAt(HEAD) = %q, %v", head, err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		repo, err := Open(t.TempDir(), "Test User", "test@example.com")
		if err != nil {
			t.Fatal(err)
		}
		hist, err := repo.History(t.Context(), "x.jsonl", 5)
		if err != nil || len(hist) != 0 {
			t.Errorf("History() = %v, %v", hist, err)
		}
	})

	t.Run("Outside", func(t *testing.T) {
		t.Parallel()
		repo, err := Open(t.TempDir(), "Test User", "test@example.com")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := repo.Commit(t.Context(), "x", filepath.Join(t.TempDir(), "a.jsonl")); err == nil {
			t.Error("Commit() outside of the repo succeeded")
		}
	})
}
