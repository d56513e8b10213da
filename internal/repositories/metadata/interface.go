// Package metadata persists the unencrypted key/value metadata of the sqlite
// backend: the PIN hash, the blob nonce and the key scheme.
package metadata

import (
	"context"
)

// Repository is a small key/value table. Get returns (nil, nil) for a key
// that does not exist.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
