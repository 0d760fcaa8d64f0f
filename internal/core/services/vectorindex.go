package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/logger"
	"github.com/custodia-labs/paperdex/internal/vectormath"
)

// DefaultBatchSize is the number of entries written per store call.
const DefaultBatchSize = 8

// similarityPlaces is the number of decimals kept on similarity scores.
const similarityPlaces = 4

// ScoredEntry is a query hit with its distance converted to similarity.
type ScoredEntry struct {
	Entry      domain.IndexEntry
	Distance   float64
	Similarity float64
}

// UpsertError reports a failed batch write. Entries from earlier batches
// were already persisted.
type UpsertError struct {
	Batch   int
	Written int
	Err     error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("write batch %d (%d entries already written): %v", e.Batch, e.Written, e.Err)
}

func (e *UpsertError) Unwrap() error {
	return e.Err
}

// VectorIndex wraps one collection of the vector store: dedup lookups,
// batched writes and similarity queries.
type VectorIndex struct {
	collection driven.Collection
	batchSize  int
}

// IndexOption configures a VectorIndex.
type IndexOption func(*VectorIndex)

// WithBatchSize sets how many entries are written per store call.
func WithBatchSize(n int) IndexOption {
	return func(x *VectorIndex) {
		if n > 0 {
			x.batchSize = n
		}
	}
}

// NewVectorIndex wraps collection.
func NewVectorIndex(collection driven.Collection, opts ...IndexOption) *VectorIndex {
	x := &VectorIndex{
		collection: collection,
		batchSize:  DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Name returns the wrapped collection's name.
func (x *VectorIndex) Name() string {
	return x.collection.Name()
}

// LookupByFingerprint returns the ids of entries carrying fingerprint.
// The boolean is true iff at least one entry exists.
func (x *VectorIndex) LookupByFingerprint(ctx context.Context, fingerprint string) ([]string, bool, error) {
	entries, err := x.collection.Get(ctx, domain.MetadataFilter{Fingerprint: fingerprint})
	if err != nil {
		return nil, false, fmt.Errorf("lookup fingerprint: %w", err)
	}
	if len(entries) == 0 {
		return nil, false, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids, true, nil
}

// Upsert writes entries in sequential batches and returns how many were
// written. The first failing batch aborts the call with an *UpsertError;
// earlier batches are not rolled back.
func (x *VectorIndex) Upsert(ctx context.Context, entries []domain.IndexEntry) (int, error) {
	for i := range entries {
		if err := entries[i].Metadata.Validate(); err != nil {
			return 0, fmt.Errorf("entry %s: %w", entries[i].ID, err)
		}
	}

	written := 0
	for start, batch := 0, 0; start < len(entries); start, batch = start+x.batchSize, batch+1 {
		end := min(start+x.batchSize, len(entries))
		if err := x.collection.Add(ctx, entries[start:end]); err != nil {
			return written, &UpsertError{Batch: batch, Written: written, Err: err}
		}
		written += end - start
		logger.Debug("Wrote batch %d to %s (%d/%d)", batch, x.collection.Name(), written, len(entries))
	}
	return written, nil
}

// Query returns up to topK entries nearest to vector, in the store's order.
// Similarity is 1 - distance rounded to four decimals.
func (x *VectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]ScoredEntry, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	neighbors, err := x.collection.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", x.collection.Name(), err)
	}

	hits := make([]ScoredEntry, len(neighbors))
	for i, n := range neighbors {
		hits[i] = ScoredEntry{
			Entry:      n.Entry,
			Distance:   n.Distance,
			Similarity: Similarity(n.Distance),
		}
	}
	return hits, nil
}

// Forget deletes every entry carrying fingerprint.
func (x *VectorIndex) Forget(ctx context.Context, fingerprint string) (int, error) {
	if fingerprint == "" {
		return 0, errors.New("forget: empty fingerprint")
	}
	n, err := x.collection.Delete(ctx, domain.MetadataFilter{Fingerprint: fingerprint})
	if err != nil {
		return 0, fmt.Errorf("forget fingerprint: %w", err)
	}
	return n, nil
}

// Count returns the number of entries in the collection.
func (x *VectorIndex) Count(ctx context.Context) (int, error) {
	return x.collection.Count(ctx)
}

// Similarity converts a cosine distance into a similarity score.
func Similarity(distance float64) float64 {
	return vectormath.Round(1-distance, similarityPlaces)
}
