// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingestion pipeline for one file runs, in order:
// fingerprint, dedup check, extraction, chunking and encoding,
// topic classification (papers only), archiving, indexing.
//
// Services are pure Go with no CGO or external dependencies.
package services
