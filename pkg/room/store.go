package room

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when no snapshot exists for the key
var ErrNotFound = errors.New("snapshot not found")

// Store is a key-value snapshot store. Writes must be atomic per key;
// snapshot contents are opaque to the store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, snapshot []byte) error
	Delete(ctx context.Context, key string) error
	ListWithPrefix(ctx context.Context, prefix string) ([][]byte, error)
}
