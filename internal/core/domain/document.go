package domain

import "strconv"

// Modality identifies which kind of content a document holds.
type Modality string

// Supported modalities.
const (
	ModalityPaper Modality = "paper"
	ModalityImage Modality = "image"
)

// String returns the string representation.
func (m Modality) String() string {
	return string(m)
}

// IsValid returns true if the modality is recognised.
func (m Modality) IsValid() bool {
	return m == ModalityPaper || m == ModalityImage
}

// Document is a paper or image submitted for ingestion.
// It only lives for the duration of a single ingestion call; the persisted
// form is the set of IndexEntry values written for its fingerprint.
type Document struct {
	// Fingerprint is the hex content hash of the file bytes.
	Fingerprint string

	// SourcePath is the absolute path the file was ingested from.
	SourcePath string

	// ArchivedPath is where the file lives after archiving.
	// Equal to SourcePath when archiving is skipped.
	ArchivedPath string

	// Name is the display name (base name of the archived file).
	Name string

	// Modality is paper or image.
	Modality Modality

	// Topic is the assigned topic label (papers only).
	Topic string

	// TopicScore is the classifier similarity, nil when no topics were given.
	TopicScore *float64
}

// Chunk is a bounded slice of a paper's extracted text.
type Chunk struct {
	// Index is the 0-based position among the document's chunks.
	Index int

	// Text is the trimmed window text.
	Text string

	// Offset is the window's start offset, in characters, within the
	// concatenated page stream.
	Offset int

	// PageStart is the 1-based page of the window's first character.
	PageStart int

	// PageEnd is the 1-based page of the window's last character.
	PageEnd int

	// Embedding is the normalised vector for Text, set during encoding.
	Embedding []float32
}

// ChunkID returns the index entry id for the chunk of a document.
func ChunkID(fingerprint string, index int) string {
	return fingerprint + "_" + strconv.Itoa(index)
}
