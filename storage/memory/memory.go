// Package memory provides a thread-safe in-memory implementation of storage.Repository.
package memory

import (
	"fmt"
	"sync"

	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/storage"
)

// Repository is a thread-safe in-memory implementation of storage.Repository.
// Suitable for testing, demos, and single-process use cases.
type Repository struct {
	mu     sync.RWMutex
	data   map[string][]byte
	puts   int
	putErr error
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new empty in-memory Repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string][]byte)}
}

func (r *Repository) Get(location string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.data[location]
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, storage.ErrNotFound)
	}
	return util.CopyBytes(data), nil
}

func (r *Repository) Put(location string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.data[location] = util.CopyBytes(data)
	r.puts++
	return nil
}

func (r *Repository) Exists(location string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.data[location]
	return ok, nil
}

// Puts reports how many successful writes the repository has accepted.
func (r *Repository) Puts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.puts
}

// FailPuts makes every subsequent Put return err. Pass nil to restore.
func (r *Repository) FailPuts(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putErr = err
}
