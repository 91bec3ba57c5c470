package storage

import "context"

// Prefix isolates this app's keys from other data sharing the same backend.
const Prefix = "myet:"

// Store is a namespaced key/value store with JSON-encoded values. Get reports
// whether the key existed; a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
