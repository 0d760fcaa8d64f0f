package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperdex/internal/core/domain"
)

func newTestImageService(t *testing.T) (*ImageService, *memory.Collection, *mockImageEmbedder) {
	t.Helper()
	col := newTestCollection(t, "images")
	embedder := &mockImageEmbedder{}
	svc, err := NewImageService(ImagePorts{
		Index:    NewVectorIndex(col),
		Embedder: embedder,
		Loader:   &mockLoader{},
		Lister:   &mockLister{},
	}, 0)
	require.NoError(t, err)
	return svc, col, embedder
}

func TestNewImageService_RequiresEmbedder(t *testing.T) {
	col := newTestCollection(t, "images")

	_, err := NewImageService(ImagePorts{Index: NewVectorIndex(col)}, 3)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexImages_TalliesOutcomes(t *testing.T) {
	svc, col, _ := newTestImageService(t)
	dir := t.TempDir()
	writeFile(t, dir, "cat.png", "cat pixels")
	writeFile(t, dir, "dog.jpg", "dog pixels")
	writeFile(t, dir, "bird.webp", "bird pixels")
	writeFile(t, dir, "broken.png", "corrupt bytes")
	writeFile(t, dir, "readme.md", "not an image")

	batch, err := svc.IndexImages(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, 4, batch.Total)
	assert.Equal(t, 3, batch.OK)
	assert.Equal(t, 0, batch.Skipped)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, 3, countEntries(t, col))

	var broken domain.IngestResult
	for _, d := range batch.Details {
		if filepath.Base(d.File) == "broken.png" {
			broken = d
		}
	}
	assert.Equal(t, domain.StatusFailed, broken.Status)
	assert.Contains(t, broken.Reason, "open image")

	again, err := svc.IndexImages(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Skipped)
	assert.Equal(t, 1, again.Failed)
	assert.Equal(t, 3, countEntries(t, col))
}

func TestAddImage(t *testing.T) {
	svc, col, _ := newTestImageService(t)
	src := writeFile(t, t.TempDir(), "cat.PNG", "cat pixels")

	res, err := svc.AddImage(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, domain.ModalityImage, res.Modality)
	assert.Equal(t, src, res.ArchivedTo)

	entries, err := col.Get(context.Background(), domain.MetadataFilter{Fingerprint: res.Fingerprint})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.Fingerprint, entries[0].ID)
	assert.Equal(t, domain.EntryKindImage, entries[0].Metadata.Kind)
	require.NotNil(t, entries[0].Metadata.Image)
	assert.Equal(t, "PNG", entries[0].Metadata.Image.Format)
	assert.Equal(t, 4, entries[0].Metadata.Image.Width)
}

func TestAddImage_PreconditionErrors(t *testing.T) {
	svc, _, _ := newTestImageService(t)
	dir := t.TempDir()

	_, err := svc.AddImage(context.Background(), filepath.Join(dir, "gone.png"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddImage(context.Background(), writeFile(t, dir, "paper.pdf", "x"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestAddImage_EmbedderFailure(t *testing.T) {
	svc, col, embedder := newTestImageService(t)
	embedder.err = errors.New("401 unauthorized")
	src := writeFile(t, t.TempDir(), "cat.png", "cat pixels")

	res, err := svc.AddImage(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, "encode image: 401 unauthorized", res.Reason)
	assert.Zero(t, countEntries(t, col))
}

func TestSearchImages(t *testing.T) {
	svc, _, _ := newTestImageService(t)
	dir := t.TempDir()
	writeFile(t, dir, "cat.png", "cat pixels")
	writeFile(t, dir, "dog.jpg", "dog pixels")
	writeFile(t, dir, "bird.webp", "bird pixels")
	_, err := svc.IndexImages(context.Background(), dir)
	require.NoError(t, err)

	res, err := svc.SearchImages(context.Background(), "a sleeping cat", 2)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, res.Status)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, filepath.Join(dir, "cat.png"), res.Hits[0].File)
	assert.Greater(t, res.Hits[0].Score, res.Hits[1].Score)
	assert.LessOrEqual(t, res.Hits[0].Score, 1.0)
}

func TestSearchImages_Errors(t *testing.T) {
	svc, _, embedder := newTestImageService(t)

	_, err := svc.SearchImages(context.Background(), "", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	embedder.err = errors.New("timeout")
	res, err := svc.SearchImages(context.Background(), "cat", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Empty(t, res.Hits)
}
