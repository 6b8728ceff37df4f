package contract

import "context"

// KeyValueRepository is a string store for small JSON documents.
type KeyValueRepository interface {
	// Get returns found=false when the key was never written.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
