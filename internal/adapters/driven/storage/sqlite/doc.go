// Package sqlite provides the SQLite-backed vector store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file holds every
// collection:
//
//   - collections: collection name, distance metric and vector size
//   - entries: id, typed metadata (JSON), chunk text and the embedding blob
//
// Nearest-neighbour queries scan the collection's embeddings and rank them by
// cosine distance in Go. Archives hold thousands of entries, not millions.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <workspace>/vectordb/paperdex.db by default.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
