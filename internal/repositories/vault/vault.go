// Package vault persists the encrypted account blob of the sqlite backend
// as a single-row table.
package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpkeeper/internal/dbx"
)

// Repository reads and replaces the account blob. Get returns (nil, nil)
// before the first Put.
type Repository interface {
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, blob []byte) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx, `SELECT blob FROM vault WHERE id = 1`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault blob: %w", err)
	}
	return blob, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, blob []byte) error {
	if blob == nil {
		blob = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vault (id, blob, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at
	`, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to put vault blob: %w", err)
	}
	return nil
}

