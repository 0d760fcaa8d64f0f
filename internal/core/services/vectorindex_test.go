package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

func paperEntries(fp string, n int) []domain.IndexEntry {
	doc := &domain.Document{Fingerprint: fp, ArchivedPath: "/a/" + fp + ".pdf", Name: fp + ".pdf", Topic: "NLP"}
	entries := make([]domain.IndexEntry, n)
	for i := range entries {
		chunk := &domain.Chunk{Index: i, Text: "text", PageStart: 1, PageEnd: 1}
		entries[i] = domain.IndexEntry{
			ID:        domain.ChunkID(fp, i),
			Embedding: []float32{1, float32(i)},
			Metadata:  domain.NewPaperChunkMetadata(doc, chunk),
			Text:      chunk.Text,
		}
	}
	return entries
}

func TestVectorIndex_UpsertBatches(t *testing.T) {
	col := newTestCollection(t, "papers")
	var sizes []int
	col.FailAdd = func(_ int, entries []domain.IndexEntry) error {
		sizes = append(sizes, len(entries))
		return nil
	}
	idx := NewVectorIndex(col)

	written, err := idx.Upsert(context.Background(), paperEntries("aa", 19))

	require.NoError(t, err)
	assert.Equal(t, 19, written)
	assert.Equal(t, []int{8, 8, 3}, sizes)
	assert.Equal(t, "papers", idx.Name())
}

func TestVectorIndex_UpsertFailureKeepsEarlierBatches(t *testing.T) {
	col := newTestCollection(t, "papers")
	storeErr := errors.New("database is locked")
	col.FailAdd = func(call int, _ []domain.IndexEntry) error {
		if call == 1 {
			return storeErr
		}
		return nil
	}
	idx := NewVectorIndex(col, WithBatchSize(4))

	written, err := idx.Upsert(context.Background(), paperEntries("aa", 10))

	assert.Equal(t, 4, written)
	var upsertErr *UpsertError
	require.ErrorAs(t, err, &upsertErr)
	assert.Equal(t, 1, upsertErr.Batch)
	assert.Equal(t, 4, upsertErr.Written)
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, 4, countEntries(t, col))
}

func TestVectorIndex_UpsertRejectsInvalidMetadata(t *testing.T) {
	col := newTestCollection(t, "papers")
	entries := paperEntries("aa", 2)
	entries[1].Metadata.Paper = nil

	written, err := NewVectorIndex(col).Upsert(context.Background(), entries)

	assert.Zero(t, written)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, countEntries(t, col))
}

func TestVectorIndex_LookupAndForget(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex(newTestCollection(t, "papers"))
	_, err := idx.Upsert(ctx, paperEntries("aa", 3))
	require.NoError(t, err)
	_, err = idx.Upsert(ctx, paperEntries("bb", 1))
	require.NoError(t, err)

	ids, ok, err := idx.LookupByFingerprint(ctx, "aa")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"aa_0", "aa_1", "aa_2"}, ids)

	ids, ok, err = idx.LookupByFingerprint(ctx, "cc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, ids)

	n, err := idx.Forget(ctx, "aa")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = idx.Forget(ctx, "")
	assert.Error(t, err)
}

func TestVectorIndex_Query(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex(newTestCollection(t, "papers"))
	_, err := idx.Upsert(ctx, paperEntries("aa", 3))
	require.NoError(t, err)

	hits, err := idx.Query(ctx, []float32{1, 0}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "aa_0", hits[0].Entry.ID)
	assert.Equal(t, 1.0, hits[0].Similarity)
	assert.Equal(t, "aa_1", hits[1].Entry.ID)
	assert.Equal(t, 0.7071, hits[1].Similarity)

	_, err = idx.Query(ctx, []float32{1, 0}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity(0))
	assert.Equal(t, 0.0, Similarity(1))
	assert.Equal(t, -1.0, Similarity(2))
	assert.Equal(t, 0.8766, Similarity(0.1234))
}
