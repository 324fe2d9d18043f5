// Package file provides a filesystem-backed storage repository. Each vault
// is a single JSON file at its location.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/storage"
)

// Store implements storage.Repository on the local filesystem.
type Store struct {
	perm os.FileMode
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns a Store that writes vault files with mode 0600.
func NewRepository() *Store {
	return &Store{perm: 0o600}
}

func (s *Store) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Put replaces the file at path via a temporary file and rename, creating
// parent directories as needed.
func (s *Store) Put(path string, data []byte) error {
	if err := util.AtomicWriteFile(path, data, s.perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *Store) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
}
