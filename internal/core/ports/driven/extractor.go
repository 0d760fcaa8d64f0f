package driven

import (
	"context"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// PageExtractor extracts text from a PDF, one string per page.
type PageExtractor interface {
	// ExtractPages returns the text of at most maxPages pages, in page order.
	// A page that cannot be read yields an empty string; only failing to
	// open the document at all is an error.
	ExtractPages(ctx context.Context, path string, maxPages int) ([]string, error)
}

// ImageLoader decodes and validates an image file.
type ImageLoader interface {
	// Load decodes the file at path. A corrupt or unsupported file is an error.
	Load(ctx context.Context, path string) (*domain.Image, error)
}

// Chunker splits per-page text into page-aware chunks.
type Chunker interface {
	// Split chunks pages, where pages[i] is the text of page i+1.
	Split(pages []string) []domain.Chunk
}

// FileLister enumerates candidate files for batch ingestion.
type FileLister interface {
	// List returns the files below root whose extension matches one of exts,
	// compared case-insensitively, in a stable order.
	List(root string, exts []string) ([]string, error)
}
