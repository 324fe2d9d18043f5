// Package storagetest holds the behaviour every storage.Repository must
// satisfy.
package storagetest

import (
	"testing"

	"github.com/jmcleod/ironvault/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises repo. location maps a short name to a location valid for
// the backend under test.
func Run(t *testing.T, repo storage.Repository, location func(name string) string) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.Get(location("missing"))
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ExistsMissing", func(t *testing.T) {
		ok, err := repo.Exists(location("missing"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("PutAndGet", func(t *testing.T) {
		loc := location("put-get")
		require.NoError(t, repo.Put(loc, []byte(`{"ciphertext":"a"}`)))

		ok, err := repo.Exists(loc)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.Get(loc)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"ciphertext":"a"}`), got)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		loc := location("replace")
		require.NoError(t, repo.Put(loc, []byte("first, and longer")))
		require.NoError(t, repo.Put(loc, []byte("second")))

		got, err := repo.Get(loc)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("LocationsIsolated", func(t *testing.T) {
		require.NoError(t, repo.Put(location("iso-a"), []byte("a")))
		require.NoError(t, repo.Put(location("iso-b"), []byte("b")))

		a, err := repo.Get(location("iso-a"))
		require.NoError(t, err)
		b, err := repo.Get(location("iso-b"))
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), a)
		assert.Equal(t, []byte("b"), b)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		loc := location("copy")
		require.NoError(t, repo.Put(loc, []byte("original")))

		got, err := repo.Get(loc)
		require.NoError(t, err)
		got[0] = 'X'

		again, err := repo.Get(loc)
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), again)
	})
}
