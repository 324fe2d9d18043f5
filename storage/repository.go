// Package storage provides the authenticated envelope codec and the storage
// abstraction that persists sealed envelopes.
package storage

import "errors"

// ErrNotFound is returned when no envelope is stored at a location.
var ErrNotFound = errors.New("record not found")

// Repository persists serialized envelopes by location. For the file
// backend a location is a filesystem path; other backends treat it as an
// opaque key. Put must replace the whole record or fail.
type Repository interface {
	Get(location string) ([]byte, error)
	Put(location string, data []byte) error
	Exists(location string) (bool, error)
}
