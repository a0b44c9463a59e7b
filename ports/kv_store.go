package ports

import "context"

// KVStore is the durable key-value contract the clustering engine persists through.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value. Implementations
	// must apply the write atomically.
	Set(ctx context.Context, key string, value []byte) error
}
