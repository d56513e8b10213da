package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/otpkeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := New(ctx, config.Storage{Backend: "file", Path: filepath.Join(dir, "store.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	b, err = New(ctx, config.Storage{Backend: "sqlite", SQLiteDSN: filepath.Join(dir, "otp.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	require.NoError(t, b.Close())
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(context.Background(), config.Storage{Backend: "ftp"})
	require.ErrorIs(t, err, ErrUnknownBackend)
}
