// Package store persists standalone JSON documents with atomic replacement.
//
// Each document (session table, account catalog, password record) is one file.
// Writes go to a temp file in the same directory and are renamed over the
// destination, so a concurrent reader never observes a partial write.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a single JSON document on disk.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a handle for the document at path. The file itself is
// created lazily on first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the document's location on disk.
func (f *File) Path() string {
	return f.path
}

// Load reads the document into v. Returns false when the document does not
// exist yet. If the path turns out to be a directory it is removed and
// treated as absent.
func (f *File) Load(v any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.healLocked(); err != nil {
		return false, err
	}

	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return true, nil
}

// Save writes v as the new document contents. The previous contents stay
// intact if marshaling or the temp write fails.
func (f *File) Save(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.healLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f.path, err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

// healLocked removes a directory squatting on the document path. Docker
// volume mounts create these when the file doesn't exist yet.
func (f *File) healLocked() error {
	info, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}
	if err := os.RemoveAll(f.path); err != nil {
		return fmt.Errorf("removing directory at %s: %w", f.path, err)
	}
	return nil
}
