package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// The vector store returns it when an entry id is written twice.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFileType indicates a file whose extension does not
	// match the modality it was submitted as.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrEmptyText indicates that extraction produced no usable chunks.
	ErrEmptyText = errors.New("empty text extracted")

	// ErrNoTopics indicates classification was requested without labels.
	ErrNoTopics = errors.New("no topic labels")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or did not respond.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is closed or not configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// vectors already stored in the collection.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
