package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/otpkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_LoadMissingIsEmpty(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "nope", "store.json"))

	st, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Secrets.HasPin())
	assert.Nil(t, st.Blob)
}

func TestFileBackend_CommitThenLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".otp", "store.json")
	b := NewFileBackend(path)
	defer b.Close()

	want := &models.State{
		Blob:    []byte("ciphertext"),
		Secrets: models.Secrets{PinHash: "hash", Nonce: []byte{1, 2, 3}, KDF: "hkdf"},
	}
	require.NoError(t, b.Commit(ctx, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, path, b.Path())
}

func TestFileBackend_CommitReplaces(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(filepath.Join(t.TempDir(), "store.json"))

	require.NoError(t, b.Commit(ctx, &models.State{Blob: []byte("one")}))
	require.NoError(t, b.Commit(ctx, &models.State{Blob: []byte("two")}))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got.Blob)

	entries, err := os.ReadDir(filepath.Dir(b.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileBackend_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFileBackend(path).Load(context.Background())
	require.Error(t, err)
}

func TestFileBackend_CommitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFileBackend(filepath.Join(t.TempDir(), "store.json")).Commit(ctx, &models.State{})
	require.ErrorIs(t, err, context.Canceled)
}
