package driving

import (
	"context"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// ImageService indexes and searches images.
type ImageService interface {
	// AddImage indexes one image file in place.
	AddImage(ctx context.Context, path string) (*domain.IngestResult, error)

	// IndexImages indexes every supported image below folder, one at a time.
	IndexImages(ctx context.Context, folder string) (*domain.BatchResult, error)

	// SearchImages finds the images closest to a text description.
	SearchImages(ctx context.Context, query string, topK int) (*domain.ImageSearchResult, error)

	// Count returns the number of indexed images.
	Count(ctx context.Context) (int, error)
}
