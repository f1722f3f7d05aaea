// Package assets resolves input mesh paths against search directories and
// caches decoded meshes.
package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Faultbox/meshgrid/pkg/formats"
	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// Library loads meshes from the working directory and a list of search
// directories.
type Library struct {
	dirs  []string
	cache *Cache
	mu    sync.RWMutex
}

// NewLibrary creates a library that searches dirs after the path itself.
func NewLibrary(dirs ...string) *Library {
	l := &Library{cache: NewCache()}
	for _, dir := range dirs {
		l.AddSearchPath(dir)
	}
	return l
}

// AddSearchPath adds a directory to search for relative inputs.
// Directories are searched in reverse order (last added = highest priority).
func (l *Library) AddSearchPath(dir string) {
	l.mu.Lock()
	l.dirs = append(l.dirs, dir)
	l.mu.Unlock()
}

// Resolve returns the file path that Load would read for path.
func (l *Library) Resolve(path string) (string, error) {
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		return path, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.dirs) - 1; i >= 0; i-- {
		candidate := filepath.Join(l.dirs[i], path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s: %w", formats.ErrRead, path, fs.ErrNotExist)
}

// Load returns a copy of the mesh at path, decoding it on first use.
// Callers may modify the returned mesh.
func (l *Library) Load(path string) (*mesh.Mesh, error) {
	resolved, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}

	if m, ok := l.cache.Get(resolved); ok {
		return m.Clone(), nil
	}
	m, err := formats.Load(resolved)
	if err != nil {
		return nil, err
	}
	l.cache.Set(resolved, m)
	return m.Clone(), nil
}

// Stats returns cache statistics.
func (l *Library) Stats() (hits, misses int) {
	return l.cache.Stats()
}

// Cache holds decoded meshes keyed by resolved path.
type Cache struct {
	data map[string]*mesh.Mesh
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*mesh.Mesh),
	}
}

// Get retrieves a mesh from the cache.
func (c *Cache) Get(key string) (*mesh.Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return m, ok
}

// Set stores a mesh in the cache.
func (c *Cache) Set(key string, m *mesh.Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = m
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
