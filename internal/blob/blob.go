package blob

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/spf13/afero"
)

// Store persists item image blobs on a filesystem, addressed by keys
// derived from item names. The filesystem is abstracted so tests can
// run against an in-memory one.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore creates a blob store rooted at dir on the OS filesystem,
// creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &Store{fs: fs, root: dir}, nil
}

// NewMemStore creates a blob store backed by an in-memory filesystem.
func NewMemStore() *Store {
	return &Store{fs: afero.NewMemMapFs(), root: "media"}
}

// Key derives the blob key for an item name and file extension,
// e.g. ("Claw Hammer", ".jpg") -> "claw-hammer.jpg".
func Key(name, ext string) string {
	return slug.Make(name) + ext
}

// Save writes a blob under the given key, replacing any existing blob.
func (s *Store) Save(key string, data []byte) error {
	if err := afero.WriteFile(s.fs, s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("writing blob %q: %w", key, err)
	}
	return nil
}

// Read returns the blob stored under the given key, or nil if no blob
// exists for it.
func (s *Store) Read(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob %q: %w", key, err)
	}
	return data, nil
}

// Delete removes the blob stored under the given key. Deleting a
// missing blob is not an error.
func (s *Store) Delete(key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob %q: %w", key, err)
	}
	return nil
}

// Exists reports whether a blob is stored under the given key.
func (s *Store) Exists(key string) (bool, error) {
	ok, err := afero.Exists(s.fs, s.path(key))
	if err != nil {
		return false, fmt.Errorf("checking blob %q: %w", key, err)
	}
	return ok, nil
}

func (s *Store) path(key string) string {
	// Keys come from slugified names plus an extension, so they never
	// contain path separators; Base guards against anything else.
	return filepath.Join(s.root, filepath.Base(key))
}
