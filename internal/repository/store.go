package repository

import "context"

// KeyValueStore is the local key-value storage every record lives in. Values are
// opaque strings (JSON documents); Set overwrites in a single write.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
