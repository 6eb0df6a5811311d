// Package store persists today, weekday-average, and projection snapshots
// with per-record staleness rules.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Container.Read when no blob exists for a key.
// Corrupt or unreadable records surface as ordinary errors and are treated
// identically by the Store.
var ErrNotFound = errors.New("store: record not found")

// Container is the shared persistence boundary: byte blobs keyed by record
// name, shared between this process and the rendering host, surviving
// restarts. Writes replace the previous value atomically; a concurrent
// reader sees either the old blob or the new one, never a partial write.
type Container interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
}

// FileContainer stores each record as one file in a directory, written via
// temp file and rename so readers never observe partial content.
type FileContainer struct {
	dir string
}

// NewFileContainer creates the directory if needed.
func NewFileContainer(dir string) (*FileContainer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: container directory not configured")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create container dir: %w", err)
	}
	return &FileContainer{dir: dir}, nil
}

func (c *FileContainer) path(key string) string {
	return filepath.Join(c.dir, key)
}

// Read returns the blob for key, or ErrNotFound.
func (c *FileContainer) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the blob for key atomically.
func (c *FileContainer) Write(key string, data []byte) error {
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp for %s: %w", key, err)
	}
	if err := os.Rename(tmp, c.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob for key. Deleting a missing key is not an error.
func (c *FileContainer) Delete(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
