package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cineday/models"

	"github.com/spf13/afero"
)

// Store keeps the last successfully fetched catalog in a single snapshot
// file. There is exactly one slot: every write fully overwrites the previous
// snapshot. The cache is best effort by contract — a missing or corrupt
// snapshot reads as absent, never as an error.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a store backed by the OS filesystem.
func NewStore(path string) *Store {
	return NewStoreWithFs(afero.NewOsFs(), path)
}

// NewStoreWithFs creates a store on the given filesystem. Tests use a
// memory-backed fs.
func NewStoreWithFs(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Persist writes the catalog atomically: encode to a temp file, then rename
// over the slot.
func (s *Store) Persist(cat *models.Catalog) error {
	data, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted catalog, or nil when no usable snapshot exists.
// A snapshot that fails to decode is treated as absent.
func (s *Store) Load() *models.Catalog {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil
	}
	var cat models.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil
	}
	return &cat
}

// Clear deletes the snapshot. No snapshot to delete is not an error.
func (s *Store) Clear() error {
	err := s.fs.Remove(s.path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
