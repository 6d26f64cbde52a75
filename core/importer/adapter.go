package importer

import "context"

// Adapter defines the entity-specific part of an import.
// Each adapter knows how to identify, check and create one kind of entity
// (e.g., archive videos, embedded videos, users).
type Adapter[T any] interface {
	// Name returns the unique name of this adapter (e.g., "videos", "users").
	Name() string

	// SourceID returns the legacy primary key of the entity.
	SourceID(entity T) int64

	// Title returns a human label for reports.
	Title(entity T) string

	// Key returns the idempotency key of the entity.
	Key(entity T) string

	// Exists reports whether a destination record with this key already exists,
	// including soft-deleted records.
	Exists(ctx context.Context, key string) (bool, error)

	// HasAsset reports whether the assets the entity requires are available.
	// Adapters without assets return true.
	HasAsset(ctx context.Context, entity T) (bool, error)

	// Import creates the destination record and returns a reference to it
	// (typically its slug or username).
	Import(ctx context.Context, entity T, assignee int64) (string, error)
}
