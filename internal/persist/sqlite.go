package persist

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/otpkeeper/internal/dbx"
	"github.com/dmitrijs2005/otpkeeper/internal/filex"
	"github.com/dmitrijs2005/otpkeeper/internal/migrations"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
	"github.com/dmitrijs2005/otpkeeper/internal/repositories/metadata"
	"github.com/dmitrijs2005/otpkeeper/internal/repositories/vault"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Metadata keys of the secrets record.
const (
	keyPinHash = "pin_hash"
	keyNonce   = "nonce"
	keyKDF     = "kdf"
)

var (
	gooseUpContext = goose.UpContext

	// goose keeps its base FS and dialect in package globals.
	gooseMu sync.Mutex
)

// RunMigrations brings the schema of db up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SQLiteBackend keeps the secrets record in the metadata table and the blob
// in the single-row vault table.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens dsn with the pure-Go sqlite driver and runs migrations.
// The parent directory of a plain file path is created first.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteBackend, error) {
	if isFilePath(dsn) {
		if _, err := filex.EnsureDir(filepath.Dir(dsn)); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteBackend(db), nil
}

// NewSQLiteBackend wraps an already migrated database.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Load(ctx context.Context) (*models.State, error) {
	meta, err := metadata.NewSQLiteRepository(b.db).List(ctx)
	if err != nil {
		return nil, err
	}
	blob, err := vault.NewSQLiteRepository(b.db).Get(ctx)
	if err != nil {
		return nil, err
	}
	return &models.State{
		Blob: blob,
		Secrets: models.Secrets{
			PinHash: string(meta[keyPinHash]),
			Nonce:   meta[keyNonce],
			KDF:     string(meta[keyKDF]),
		},
	}, nil
}

func (b *SQLiteBackend) Commit(ctx context.Context, state *models.State) error {
	if state == nil {
		state = &models.State{}
	}
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)
		if err := meta.Clear(ctx); err != nil {
			return err
		}
		pairs := []struct {
			key   string
			value []byte
		}{
			{keyPinHash, []byte(state.Secrets.PinHash)},
			{keyNonce, state.Secrets.Nonce},
			{keyKDF, []byte(state.Secrets.KDF)},
		}
		for _, p := range pairs {
			if len(p.value) == 0 {
				continue
			}
			if err := meta.Set(ctx, p.key, p.value); err != nil {
				return err
			}
		}
		return vault.NewSQLiteRepository(tx).Put(ctx, state.Blob)
	})
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func isFilePath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}
