// Package storage keeps the admin client's unsaved draft on disk so edits
// survive between CLI invocations.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SRAS2024/About-Me/internal/client/session"
)

// DefaultFile is the draft file used when no path is configured.
const DefaultFile = "draft.json"

// FileStore reads and writes a session.Draft as JSON.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

// NewFileStore returns a store for path, or DefaultFile when path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFile
	}
	return &FileStore{Path: path}
}

// Load returns the stored draft. A missing file yields an empty draft and
// ok=false.
func (fs *FileStore) Load() (d session.Draft, ok bool, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return session.NewDraft(), false, nil
		}
		return session.Draft{}, false, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&d); err != nil {
		return session.Draft{}, false, fmt.Errorf("decode draft %s: %w", fs.Path, err)
	}
	if d.Rows == nil {
		return session.NewDraft(), false, nil
	}
	return d, true, nil
}

// Save writes d, replacing the previous file atomically.
func (fs *FileStore) Save(d session.Draft) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if dir := filepath.Dir(fs.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	tmp := fs.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, fs.Path)
}

// Clear removes the stored draft. Removing a missing file is not an error.
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := os.Remove(fs.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
