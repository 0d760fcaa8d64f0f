package driven

import (
	"context"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// TextEmbedder encodes text into fixed-length vectors.
type TextEmbedder interface {
	// Encode returns one vector per input text, in input order.
	// When normalize is true every vector has unit L2 length.
	Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error)

	// Dimensions returns the vector size produced by this model.
	Dimensions() int

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Ping checks if the service is available.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ImageEmbedder encodes images and text into one shared vector space,
// so text queries can be matched against image vectors.
type ImageEmbedder interface {
	// EncodeImages returns one vector per image, in input order.
	EncodeImages(ctx context.Context, images []*domain.Image, normalize bool) ([][]float32, error)

	// EncodeText returns one vector per query text, in input order.
	EncodeText(ctx context.Context, texts []string, normalize bool) ([][]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Ping checks if the service is available.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
