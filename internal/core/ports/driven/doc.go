// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextEmbedder: Encodes chunk text, topic labels and paper queries
//   - ImageEmbedder: Encodes images, and text queries into the image space
//   - PageExtractor: Extracts per-page text from a PDF
//   - ImageLoader: Decodes and validates an image file
//   - Chunker: Splits page text into page-aware chunks
//   - FileLister: Enumerates files for batch ingestion
//   - VectorStore: Opens named collections in the persistent vector store
//   - Collection: add/get/query/delete over one collection
//   - Archiver: Copies an ingested file into the archive
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
