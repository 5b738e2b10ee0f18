package storage

import (
	"context"

	"github.com/poiesic/grantlens/core"
)

// EmbeddingRepository caches embedding vectors keyed by content hash of
// (model, text). Implementations must be thread-safe and support
// concurrent access.
type EmbeddingRepository interface {
	// PutEmbeddings stores one or more embedding records.
	// Sets InsertedAt if not already set. Existing entries with the same
	// key are overwritten; the content-based key makes that a no-op in
	// practice.
	PutEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error

	// GetEmbedding retrieves a single embedding record by key.
	// Returns ErrNotFound if no entry exists.
	GetEmbedding(ctx context.Context, key core.ID) (*core.EmbeddingRecord, error)

	// GetEmbeddings retrieves multiple embedding records by key.
	// Returns only the entries that exist, in key order, with no error
	// for missing ones.
	GetEmbeddings(ctx context.Context, keys ...core.ID) ([]*core.EmbeddingRecord, error)

	// DeleteModel removes every cached entry produced by the named model.
	// Returns the number of entries removed.
	DeleteModel(ctx context.Context, model string) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
