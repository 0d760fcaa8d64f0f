package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/core/ports/driving"
	"github.com/custodia-labs/paperdex/internal/fingerprint"
	"github.com/custodia-labs/paperdex/internal/logger"
)

// Ensure ImageService implements the interface.
var _ driving.ImageService = (*ImageService)(nil)

// ImagePorts are the collaborators of an ImageService.
type ImagePorts struct {
	Index    *VectorIndex
	Embedder driven.ImageEmbedder
	Loader   driven.ImageLoader
	Lister   driven.FileLister
}

// Validate checks that every collaborator is set.
func (p ImagePorts) Validate() error {
	switch {
	case p.Index == nil:
		return errors.New("image service: vector index is required")
	case p.Embedder == nil:
		return fmt.Errorf("image service: %w", domain.ErrEmbeddingUnavailable)
	case p.Loader == nil:
		return errors.New("image service: image loader is required")
	case p.Lister == nil:
		return errors.New("image service: file lister is required")
	}
	return nil
}

// ImageService indexes images in place and answers text-to-image queries.
type ImageService struct {
	ports ImagePorts
	topK  int
	locks *keyedMutex
}

// NewImageService creates a new image service. topK is the default number
// of hits returned when a query does not set one.
func NewImageService(ports ImagePorts, topK int) (*ImageService, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &ImageService{ports: ports, topK: topK, locks: newKeyedMutex()}, nil
}

// AddImage indexes one image file.
func (s *ImageService) AddImage(ctx context.Context, path string) (*domain.IngestResult, error) {
	src, err := checkFile(path, ImageExtensions)
	if err != nil {
		return nil, err
	}

	res := s.ingest(ctx, src)
	return &res, nil
}

// IndexImages indexes every supported image below folder.
func (s *ImageService) IndexImages(ctx context.Context, folder string) (*domain.BatchResult, error) {
	root, err := checkFolder(folder)
	if err != nil {
		return nil, err
	}

	files, err := s.ports.Lister.List(root, ImageExtensions)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	return runBatch(ctx, domain.ModalityImage, files, s.ingest)
}

func (s *ImageService) ingest(ctx context.Context, src string) domain.IngestResult {
	const modality = domain.ModalityImage
	logger.Debug("Indexing image %s", src)

	fp, err := fingerprint.File(src)
	if err != nil {
		return failed(src, modality, "", "fingerprint", err)
	}

	unlock := s.locks.Lock(fp)
	defer unlock()

	if _, exists, err := s.ports.Index.LookupByFingerprint(ctx, fp); err != nil {
		return failed(src, modality, fp, "dedup check", err)
	} else if exists {
		return skipped(src, modality, fp)
	}

	img, err := s.ports.Loader.Load(ctx, src)
	if err != nil {
		return failed(src, modality, fp, "open image", err)
	}

	vecs, err := s.ports.Embedder.EncodeImages(ctx, []*domain.Image{img}, true)
	if err != nil {
		return failed(src, modality, fp, "encode image", err)
	}
	if len(vecs) != 1 {
		return failed(src, modality, fp, "encode image", fmt.Errorf("got %d vectors for 1 image", len(vecs)))
	}

	doc := &domain.Document{
		Fingerprint:  fp,
		SourcePath:   src,
		ArchivedPath: src,
		Name:         filepath.Base(src),
		Modality:     modality,
	}
	entry := domain.IndexEntry{
		ID:        fp,
		Embedding: vecs[0],
		Metadata: domain.NewImageMetadata(doc, domain.ImageMetadata{
			Format: img.Format,
			Width:  img.Width,
			Height: img.Height,
		}),
	}
	if _, err := s.ports.Index.Upsert(ctx, []domain.IndexEntry{entry}); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return skipped(src, modality, fp)
		}
		return failed(src, modality, fp, "store write", err)
	}

	return domain.IngestResult{
		Status:      domain.StatusOK,
		File:        src,
		Modality:    modality,
		Fingerprint: fp,
		ArchivedTo:  src,
	}
}

// SearchImages embeds query into the image space and returns the nearest images.
func (s *ImageService) SearchImages(ctx context.Context, query string, topK int) (*domain.ImageSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.topK
	}

	logger.Section("Search Images")
	logger.Debug("Query: %q, top_k: %d", query, topK)

	result := &domain.ImageSearchResult{Query: query, Hits: []domain.ImageHit{}}
	fail := func(stage string, err error) *domain.ImageSearchResult {
		logger.Warn("image search failed at %s: %v", stage, err)
		result.Status = domain.StatusFailed
		result.Reason = fmt.Sprintf("%s: %v", stage, err)
		return result
	}

	vecs, err := s.ports.Embedder.EncodeText(ctx, []string{query}, true)
	if err != nil {
		return fail("encode query", err), nil
	}
	if len(vecs) != 1 {
		return fail("encode query", fmt.Errorf("got %d vectors for 1 query", len(vecs))), nil
	}

	hits, err := s.ports.Index.Query(ctx, vecs[0], topK)
	if err != nil {
		return fail("query", err), nil
	}

	for _, h := range hits {
		result.Hits = append(result.Hits, domain.ImageHit{
			File:  h.Entry.Metadata.FilePath,
			Score: h.Similarity,
		})
	}
	result.Status = domain.StatusOK
	return result, nil
}

// Count returns the number of indexed images.
func (s *ImageService) Count(ctx context.Context) (int, error) {
	return s.ports.Index.Count(ctx)
}
