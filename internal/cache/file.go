package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FileCache lays responses out as <dir>/<season>/<endpoint>.json.
type FileCache struct {
	dir string
}

// NewFileCache returns a cache rooted at dir. The directory is created lazily.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) path(season int, endpoint string) string {
	return filepath.Join(c.dir, strconv.Itoa(season), endpoint+".json")
}

// Get reads a stored response.
func (c *FileCache) Get(_ context.Context, season int, endpoint string) ([]byte, error) {
	body, err := os.ReadFile(c.path(season, endpoint))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMiss
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %d/%s: %w", season, endpoint, err)
	}

	return body, nil
}

// Put stores a response, replacing any previous one.
func (c *FileCache) Put(_ context.Context, season int, endpoint string, body []byte) error {
	path := c.path(season, endpoint)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry %d/%s: %w", season, endpoint, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit cache entry %d/%s: %w", season, endpoint, err)
	}

	return nil
}

// Close is a no-op.
func (c *FileCache) Close() error {
	return nil
}
