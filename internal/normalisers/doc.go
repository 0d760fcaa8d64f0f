// Package normalisers turns source files into the plain inputs the ingestion
// pipeline works on: per-page text for PDFs and decoded pixels for images.
package normalisers
