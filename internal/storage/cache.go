package storage

import (
	"sync"
)

// Cache holds folder and file listings until the watcher invalidates them.
type Cache struct {
	mu sync.RWMutex

	// Folder names under the root, nil when not cached.
	folders []string

	// File listings per folder.
	files map[string][]FileInfo

	// Max number of cached folder listings; the map is reset when it is full.
	maxFolders int
}

// NewCache initializes a new cache.
func NewCache() *Cache {
	return &Cache{
		files:      make(map[string][]FileInfo),
		maxFolders: 256,
	}
}

// GetFolders returns the cached folder list.
func (c *Cache) GetFolders() ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.folders, c.folders != nil
}

// SetFolders updates the cached folder list.
func (c *Cache) SetFolders(folders []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if folders == nil {
		folders = []string{}
	}
	c.folders = folders
}

// GetFiles returns the cached listing of folder.
func (c *Cache) GetFiles(folder string) ([]FileInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	files, ok := c.files[folder]
	return files, ok
}

// SetFiles caches the listing of folder.
func (c *Cache) SetFiles(folder string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple size limiting: clear if it grows too large
	if len(c.files) >= c.maxFolders {
		c.files = make(map[string][]FileInfo)
	}
	c.files[folder] = files
}

// InvalidateFolders clears the cached folder list.
func (c *Cache) InvalidateFolders() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.folders = nil
}

// InvalidateFiles removes the listing of folder from cache.
func (c *Cache) InvalidateFiles(folder string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, folder)
}

// InvalidateAll clears the entire cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.folders = nil
	c.files = make(map[string][]FileInfo)
}
