// Package bbolt provides a BBolt-backed storage repository. All vaults share
// one database file; each location is a key in a single bucket.
package bbolt

import (
	"fmt"

	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/storage"
	"go.etcd.io/bbolt"
)

var envelopeBucket = []byte("envelopes")

// Store implements storage.Repository backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns a Repository backed by the given BBolt database.
func NewRepository(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// NewRepositoryFromFile opens a BBolt database at the given path and returns a new Repository.
func NewRepositoryFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewRepository(db), nil
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(location string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(envelopeBucket)
		if b == nil {
			return fmt.Errorf("%s: %w", location, storage.ErrNotFound)
		}
		v := b.Get([]byte(location))
		if v == nil {
			return fmt.Errorf("%s: %w", location, storage.ErrNotFound)
		}
		// v is only valid for the life of the transaction.
		data = util.CopyBytes(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) Put(location string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(envelopeBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(location), util.CopyBytes(data))
	})
}

func (s *Store) Exists(location string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(envelopeBucket); b != nil {
			ok = b.Get([]byte(location)) != nil
		}
		return nil
	})
	return ok, err
}
