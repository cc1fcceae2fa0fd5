package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, err)

	token := StoredToken{
		AccessToken:  "abc",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(time.Minute).Unix(),
	}
	require.NoError(t, store.Save(ctx, token))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, token, *loaded)
	assert.False(t, loaded.IsExpired())
}

func TestFileStoreMissingFile(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing an empty store is a no-op.
	assert.NoError(t, store.Clear(ctx))
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStoreSavePermissions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, StoredToken{AccessToken: "abc", ExpiresAt: 1}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, StoredToken{AccessToken: "first", RefreshToken: "r1", ExpiresAt: 1}))
	require.NoError(t, store.Save(ctx, StoredToken{AccessToken: "second", ExpiresAt: 2}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "second", loaded.AccessToken)
	// Overwrite is wholesale, no merging of the previous refresh token.
	assert.Empty(t, loaded.RefreshToken)
}

func TestFileStoreClear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, StoredToken{AccessToken: "abc", ExpiresAt: 1}))
	require.NoError(t, store.Clear(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoredTokenIsExpired(t *testing.T) {
	expired := StoredToken{AccessToken: "a", ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	assert.True(t, expired.IsExpired())

	valid := StoredToken{AccessToken: "a", ExpiresAt: time.Now().Add(time.Minute).Unix()}
	assert.False(t, valid.IsExpired())
}
