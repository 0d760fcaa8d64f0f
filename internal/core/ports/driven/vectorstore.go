package driven

import (
	"context"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// VectorStore is the persistent store holding named vector collections.
// A single handle is opened per process and passed to every component
// that needs it; Close releases it.
type VectorStore interface {
	// Collection returns the named collection, creating it if needed.
	Collection(ctx context.Context, name string) (Collection, error)

	// Close releases the underlying storage.
	Close() error
}

// Collection holds the index entries of one modality.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Add writes entries. Writing an id that already exists fails with
	// domain.ErrAlreadyExists; a vector whose length differs from the stored
	// vectors fails with domain.ErrDimensionMismatch. A failed call writes nothing.
	Add(ctx context.Context, entries []domain.IndexEntry) error

	// Get returns entries whose metadata matches filter, in insertion order.
	// Embeddings are not loaded.
	Get(ctx context.Context, filter domain.MetadataFilter) ([]domain.IndexEntry, error)

	// Query returns up to n entries nearest to vector by cosine distance,
	// ordered by increasing distance.
	Query(ctx context.Context, vector []float32, n int) ([]domain.Neighbor, error)

	// Delete removes entries matching filter and returns how many were removed.
	Delete(ctx context.Context, filter domain.MetadataFilter) (int, error)

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)
}
