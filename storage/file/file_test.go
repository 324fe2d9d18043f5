package file

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jmcleod/ironvault/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	dir := t.TempDir()
	storagetest.Run(t, NewRepository(), func(name string) string {
		return filepath.Join(dir, name+".json")
	})
}

func TestStore_PutCreatesParentsWithPrivateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "vault.json")
	repo := NewRepository()

	require.NoError(t, repo.Put(path, []byte("{}")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestStore_ExistsOnDirectoryPath(t *testing.T) {
	dir := t.TempDir()
	ok, err := NewRepository().Exists(dir)
	require.NoError(t, err)
	assert.True(t, ok)
}
