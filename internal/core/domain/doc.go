// Package domain defines the core business entities for paperdex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A paper or image identified by its content fingerprint
//   - Chunk: A page-aware slice of a paper's extracted text
//   - IndexEntry: The persisted unit inside a vector collection
//   - IngestResult, BatchResult: Outcome records of ingestion calls
//   - PaperSearchResult, ImageSearchResult: Outcome records of queries
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
