// Package persist loads and commits the store state through a pluggable
// backend. Every backend writes the account blob and its secrets record as
// one unit, so a crash can never leave a blob paired with a stale nonce.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/otpkeeper/internal/config"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend persists a models.State.
type Backend interface {
	// Load returns the stored state, or an empty state if nothing has been
	// committed yet.
	Load(ctx context.Context) (*models.State, error)

	// Commit replaces the stored state atomically.
	Commit(ctx context.Context, state *models.State) error

	Close() error
}

// New opens the backend named by cfg.Backend.
func New(ctx context.Context, cfg config.Storage) (Backend, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileBackend(cfg.Path), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLiteDSN)
	case "s3":
		return NewS3Backend(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
