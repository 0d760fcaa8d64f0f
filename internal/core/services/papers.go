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
	"github.com/custodia-labs/paperdex/internal/vectormath"
)

// Ensure PaperService implements the interface.
var _ driving.PaperService = (*PaperService)(nil)

// PaperPorts are the collaborators of a PaperService.
type PaperPorts struct {
	Index      *VectorIndex
	Embedder   driven.TextEmbedder
	Extractor  driven.PageExtractor
	Chunker    driven.Chunker
	Classifier *TopicClassifier
	Archivist  *Archivist
	Lister     driven.FileLister
}

// Validate checks that every collaborator is set.
func (p PaperPorts) Validate() error {
	switch {
	case p.Index == nil:
		return errors.New("paper service: vector index is required")
	case p.Embedder == nil:
		return fmt.Errorf("paper service: %w", domain.ErrEmbeddingUnavailable)
	case p.Extractor == nil:
		return errors.New("paper service: page extractor is required")
	case p.Chunker == nil:
		return errors.New("paper service: chunker is required")
	case p.Classifier == nil:
		return errors.New("paper service: topic classifier is required")
	case p.Archivist == nil:
		return errors.New("paper service: archivist is required")
	case p.Lister == nil:
		return errors.New("paper service: file lister is required")
	}
	return nil
}

// PaperConfig holds the tunables of a PaperService.
type PaperConfig struct {
	MaxPages      int
	FallbackTopic string
	TopK          int
	SnippetChars  int
}

// PaperConfigFrom derives a PaperConfig from application settings.
func PaperConfigFrom(s *domain.AppSettings) PaperConfig {
	return PaperConfig{
		MaxPages:      s.Ingest.MaxPages,
		FallbackTopic: s.Ingest.FallbackTopic,
		TopK:          s.Search.TopK,
		SnippetChars:  s.Search.SnippetChars,
	}
}

// PaperService ingests PDFs into the paper collection and answers queries.
type PaperService struct {
	ports PaperPorts
	cfg   PaperConfig
	locks *keyedMutex
}

// NewPaperService creates a new paper service.
func NewPaperService(ports PaperPorts, cfg PaperConfig) (*PaperService, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = domain.DefaultMaxPages
	}
	if cfg.FallbackTopic == "" {
		cfg.FallbackTopic = domain.DefaultFallbackTopic
	}
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	if cfg.SnippetChars <= 0 {
		cfg.SnippetChars = domain.DefaultSnippetChars
	}
	return &PaperService{ports: ports, cfg: cfg, locks: newKeyedMutex()}, nil
}

// AddPaper ingests one PDF.
func (s *PaperService) AddPaper(
	ctx context.Context, path string, opts domain.AddPaperOptions,
) (*domain.IngestResult, error) {
	src, err := checkFile(path, PaperExtensions)
	if err != nil {
		return nil, err
	}

	res := s.ingest(ctx, src, opts)
	return &res, nil
}

// BatchOrganize ingests and archives every PDF below folder.
func (s *PaperService) BatchOrganize(
	ctx context.Context, folder string, topics []string,
) (*domain.BatchResult, error) {
	root, err := checkFolder(folder)
	if err != nil {
		return nil, err
	}

	files, err := s.ports.Lister.List(root, PaperExtensions)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}

	opts := domain.AddPaperOptions{Topics: topics}
	return runBatch(ctx, domain.ModalityPaper, files, func(ctx context.Context, path string) domain.IngestResult {
		return s.ingest(ctx, path, opts)
	})
}

// ingest runs the pipeline for one validated PDF path.
//
//nolint:gocyclo // one branch per pipeline stage
func (s *PaperService) ingest(ctx context.Context, src string, opts domain.AddPaperOptions) domain.IngestResult {
	const modality = domain.ModalityPaper
	logger.Section("Add Paper")
	logger.Debug("Source: %s", src)

	// 1. Fingerprint
	fp, err := fingerprint.File(src)
	if err != nil {
		return failed(src, modality, "", "fingerprint", err)
	}
	logger.Debug("Fingerprint: %s", fp)

	unlock := s.locks.Lock(fp)
	defer unlock()

	// 2. Dedup check
	if _, exists, err := s.ports.Index.LookupByFingerprint(ctx, fp); err != nil {
		return failed(src, modality, fp, "dedup check", err)
	} else if exists {
		logger.Info("Skipping %s: already indexed", filepath.Base(src))
		return skipped(src, modality, fp)
	}

	// 3. Extract and chunk
	pages, err := s.ports.Extractor.ExtractPages(ctx, src, s.cfg.MaxPages)
	if err != nil {
		return failed(src, modality, fp, "extract pages", err)
	}
	chunks := s.ports.Chunker.Split(pages)
	logger.Debug("Extracted %d page(s), %d chunk(s)", len(pages), len(chunks))
	if len(chunks) == 0 {
		return failed(src, modality, fp, "chunk", domain.ErrEmptyText)
	}

	// 4. Encode chunks and pool them into a document vector
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vecs, err := s.ports.Embedder.Encode(ctx, texts, true)
	if err != nil {
		return failed(src, modality, fp, "encode chunks", err)
	}
	if len(vecs) != len(chunks) {
		return failed(src, modality, fp, "encode chunks",
			fmt.Errorf("got %d vectors for %d chunks", len(vecs), len(chunks)))
	}
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
	}
	mean, err := vectormath.Mean(vecs)
	if err != nil {
		return failed(src, modality, fp, "pool embeddings", err)
	}
	docVec := vectormath.Normalize(mean)

	doc := &domain.Document{
		Fingerprint: fp,
		SourcePath:  src,
		Modality:    modality,
		Topic:       s.cfg.FallbackTopic,
	}

	// 5. Classify
	if len(opts.Topics) > 0 {
		match, err := s.ports.Classifier.Classify(ctx, docVec, opts.Topics)
		if err != nil {
			return failed(src, modality, fp, "classify", err)
		}
		doc.Topic = match.Label
		doc.TopicScore = &match.Score
		logger.Debug("Topic: %s (%.4f)", match.Label, match.Score)
	}

	// 6. Archive
	doc.ArchivedPath = src
	if !opts.NoMove {
		dst, err := s.ports.Archivist.Archive(ctx, doc.Topic, src, fp)
		if err != nil {
			return failed(src, modality, fp, "archive", err)
		}
		doc.ArchivedPath = dst
	}
	doc.Name = filepath.Base(doc.ArchivedPath)

	// 7. Index
	entries := make([]domain.IndexEntry, len(chunks))
	for i := range chunks {
		entries[i] = domain.IndexEntry{
			ID:        domain.ChunkID(fp, chunks[i].Index),
			Embedding: chunks[i].Embedding,
			Metadata:  domain.NewPaperChunkMetadata(doc, &chunks[i]),
			Text:      chunks[i].Text,
		}
	}
	if written, err := s.ports.Index.Upsert(ctx, entries); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) && written == 0 {
			logger.Info("Skipping %s: indexed concurrently", filepath.Base(src))
			return skipped(src, modality, fp)
		}
		s.forgetPartial(ctx, fp, err)
		return failed(src, modality, fp, "store write", err)
	}

	logger.Info("Indexed %s: %d chunk(s), topic %s", doc.Name, len(entries), doc.Topic)
	return domain.IngestResult{
		Status:        domain.StatusOK,
		File:          src,
		Modality:      modality,
		Fingerprint:   fp,
		ArchivedTo:    doc.ArchivedPath,
		Topic:         doc.Topic,
		TopicScore:    doc.TopicScore,
		ChunksIndexed: len(entries),
	}
}

// forgetPartial removes the entries of fp written before a batch failed,
// so the paper is not left half indexed and can be ingested again.
func (s *PaperService) forgetPartial(ctx context.Context, fp string, err error) {
	var upsertErr *UpsertError
	if !errors.As(err, &upsertErr) || upsertErr.Written == 0 {
		return
	}
	n, ferr := s.ports.Index.Forget(ctx, fp)
	if ferr != nil {
		logger.Error("Could not remove %d partially written entries for %s: %v", upsertErr.Written, fp, ferr)
		return
	}
	logger.Warn("Removed %d partially written entries for %s", n, fp)
}

// SearchPapers embeds query and returns the nearest chunks and their files.
func (s *PaperService) SearchPapers(
	ctx context.Context, query string, opts domain.PaperSearchOptions,
) (*domain.PaperSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	logger.Section("Search Papers")
	logger.Debug("Query: %q, top_k: %d", query, topK)

	result := &domain.PaperSearchResult{Query: query, TopFiles: []domain.FileHit{}}

	vecs, err := s.ports.Embedder.Encode(ctx, []string{query}, true)
	if err != nil {
		return failSearch(result, "encode query", err), nil
	}
	if len(vecs) != 1 {
		return failSearch(result, "encode query", fmt.Errorf("got %d vectors for 1 query", len(vecs))), nil
	}

	hits, err := s.ports.Index.Query(ctx, vecs[0], topK)
	if err != nil {
		return failSearch(result, "query", err), nil
	}

	chunkHits := make([]domain.ChunkHit, 0, len(hits))
	for _, h := range hits {
		meta := h.Entry.Metadata
		if meta.Paper == nil {
			continue
		}
		chunkHits = append(chunkHits, domain.ChunkHit{
			File:      meta.FilePath,
			Topic:     meta.Paper.Topic,
			PageStart: meta.Paper.PageStart,
			PageEnd:   meta.Paper.PageEnd,
			Pages:     domain.PageRange(meta.Paper.PageStart, meta.Paper.PageEnd),
			Score:     h.Similarity,
			Snippet:   Snippet(h.Entry.Text, s.cfg.SnippetChars),
		})
	}
	logger.Debug("%d chunk hit(s)", len(chunkHits))

	result.Status = domain.StatusOK
	result.TopFiles = AggregateByFile(chunkHits)
	if !opts.FilesOnly {
		result.TopChunks = chunkHits
	}
	return result, nil
}

// Count returns the number of indexed chunks.
func (s *PaperService) Count(ctx context.Context) (int, error) {
	return s.ports.Index.Count(ctx)
}

func failSearch(r *domain.PaperSearchResult, stage string, err error) *domain.PaperSearchResult {
	logger.Warn("paper search failed at %s: %v", stage, err)
	r.Status = domain.StatusFailed
	r.Reason = fmt.Sprintf("%s: %v", stage, err)
	return r
}

// Snippet returns the first n characters of text with newlines flattened.
func Snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.ReplaceAll(string(runes), "\n", " ")
}
