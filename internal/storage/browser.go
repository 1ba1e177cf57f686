package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/jsonledit/internal/jsonldb"
)

// Extension is the suffix of record files.
const Extension = ".jsonl"

// ErrInvalidPath is returned for a folder or file name that does not resolve to
// a record file under the root.
var ErrInvalidPath = errors.New("invalid path")

// FileInfo describes one record file.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	// Records is the number of non-blank lines, or -1 if the file could not be read.
	Records int `json:"records"`
}

// Browser lists the record files under a data root.
// The layout is one level deep:
// - Folders: immediate subdirectories of the root
// - Files: files ending with .jsonl in a folder
type Browser struct {
	rootDir string
	store   *jsonldb.Store
	cache   *Cache
}

// NewBrowser initializes a Browser with the given root directory.
// Creates the root directory if needed.
func NewBrowser(rootDir string, store *jsonldb.Store) (*Browser, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	if store == nil {
		store = &jsonldb.Store{}
	}
	return &Browser{rootDir: abs, store: store, cache: NewCache()}, nil
}

// RootDir returns the absolute root directory path.
func (b *Browser) RootDir() string {
	return b.rootDir
}

// Changed drops the cached listing of the folder holding path, so record
// counts are recomputed after a rewrite.
func (b *Browser) Changed(path string) {
	if dir := filepath.Dir(path); filepath.Dir(dir) == b.rootDir {
		b.cache.InvalidateFiles(filepath.Base(dir))
	}
}

// ListFolders returns the non-hidden subdirectories of the root, sorted.
func (b *Browser) ListFolders() ([]string, error) {
	if folders, ok := b.cache.GetFolders(); ok {
		return folders, nil
	}
	entries, err := os.ReadDir(b.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	folders := []string{}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			folders = append(folders, e.Name())
		}
	}
	slices.Sort(folders)
	b.cache.SetFolders(folders)
	return folders, nil
}

// ListFiles returns the record files of folder, sorted by name.
func (b *Browser) ListFiles(folder string) ([]FileInfo, error) {
	dir, err := b.folderPath(folder)
	if err != nil {
		return nil, err
	}
	if files, ok := b.cache.GetFiles(folder); ok {
		return files, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list files in %s: %w", folder, err)
	}
	files := []FileInfo{}
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		n, err := b.store.Count(filepath.Join(dir, e.Name()))
		if err != nil {
			n = -1
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), Modified: info.ModTime(), Records: n})
	}
	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Name, b.Name) })
	b.cache.SetFiles(folder, files)
	return files, nil
}

// Resolve returns the path of file in folder. It does not check that the file
// exists.
func (b *Browser) Resolve(folder, file string) (string, error) {
	dir, err := b.folderPath(folder)
	if err != nil {
		return "", err
	}
	if !validName(file) || !strings.HasSuffix(file, Extension) {
		return "", fmt.Errorf("%w: file %q", ErrInvalidPath, file)
	}
	return filepath.Join(dir, file), nil
}

// Rel returns path relative to the root, slash separated.
func (b *Browser) Rel(path string) string {
	rel, err := filepath.Rel(b.rootDir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (b *Browser) folderPath(folder string) (string, error) {
	if !validName(folder) || strings.HasPrefix(folder, ".") {
		return "", fmt.Errorf("%w: folder %q", ErrInvalidPath, folder)
	}
	return filepath.Join(b.rootDir, folder), nil
}

// validName accepts a single path element.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
