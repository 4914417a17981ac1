package driven

import "context"

// SnapshotStore is a small local key-value store for session snapshots.
type SnapshotStore interface {
	// Load returns the data stored under key.
	// Returns domain.ErrNotFound when nothing is stored.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the data stored under key.
	// Exhausted storage is reported as domain.ErrStorageFull.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
