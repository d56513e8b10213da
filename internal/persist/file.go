package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/otpkeeper/internal/filex"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
)

// FileBackend keeps the envelope in a single local file.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the envelope location.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Load(_ context.Context) (*models.State, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &models.State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	return decodeState(data)
}

func (b *FileBackend) Commit(ctx context.Context, state *models.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if _, err := filex.EnsureDir(filepath.Dir(b.path)); err != nil {
		return err
	}
	return filex.WriteFileAtomic(b.path, data, filex.FilePerm)
}

func (b *FileBackend) Close() error { return nil }
