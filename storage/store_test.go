package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/itportal/go-portal-client/internal/errors"
	"github.com/itportal/go-portal-client/storage"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	store := storage.NewInMemoryStore()

	_, err := store.Get(storage.KeyTabID)
	require.ErrorIs(t, err, errors.ErrKeyNotFound)

	require.NoError(t, store.Set(storage.KeyTabID, "123-0.5"))

	value, err := store.Get(storage.KeyTabID)
	require.NoError(t, err)
	require.Equal(t, "123-0.5", value)

	require.NoError(t, store.Delete(storage.KeyTabID))
	_, err = store.Get(storage.KeyTabID)
	require.ErrorIs(t, err, errors.ErrKeyNotFound)
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	a := storage.NewInMemoryStore()
	b := storage.NewInMemoryStore()

	require.NoError(t, a.Set(storage.KeyTabID, "a"))

	_, err := b.Get(storage.KeyTabID)
	require.ErrorIs(t, err, errors.ErrKeyNotFound)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.yaml")
	store := storage.NewFileStore(path)

	_, err := store.Get(storage.KeyToken)
	require.ErrorIs(t, err, errors.ErrKeyNotFound)

	require.NoError(t, store.Set(storage.KeyToken, "tok-1"))
	require.NoError(t, store.Set(storage.KeyTabID, "123-0.5"))

	// A fresh store over the same file sees the persisted values.
	reopened := storage.NewFileStore(path)
	value, err := reopened.Get(storage.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok-1", value)

	require.NoError(t, reopened.Delete(storage.KeyToken))
	_, err = reopened.Get(storage.KeyToken)
	require.ErrorIs(t, err, errors.ErrKeyNotFound)

	// The other key is untouched.
	value, err = reopened.Get(storage.KeyTabID)
	require.NoError(t, err)
	require.Equal(t, "123-0.5", value)
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	store := storage.NewFileStore(path)

	require.NoError(t, store.Set(storage.KeyToken, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreDeleteAbsentKey(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, store.Delete(storage.KeyToken))
}
