package domain

import "fmt"

// EntryKind tags the variant carried by an entry's Metadata.
type EntryKind string

// Entry kinds.
const (
	EntryKindPaperChunk EntryKind = "paper_chunk"
	EntryKindImage      EntryKind = "image"
)

// String returns the string representation.
func (k EntryKind) String() string {
	return string(k)
}

// PaperChunkMetadata is the variant payload of a paper chunk entry.
type PaperChunkMetadata struct {
	Topic      string   `json:"topic"`
	TopicScore *float64 `json:"topic_score,omitempty"`
	ChunkIndex int      `json:"chunk_id"`
	PageStart  int      `json:"page_start"`
	PageEnd    int      `json:"page_end"`
}

// ImageMetadata is the variant payload of an image entry.
type ImageMetadata struct {
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Metadata is the closed metadata record stored with every index entry.
// Kind selects which of Paper or Image is set; exactly one must be non-nil.
type Metadata struct {
	Kind        EntryKind `json:"type"`
	Fingerprint string    `json:"file_hash"`
	FilePath    string    `json:"file_path"`
	FileName    string    `json:"file_name"`

	Paper *PaperChunkMetadata `json:"paper,omitempty"`
	Image *ImageMetadata      `json:"image,omitempty"`
}

// NewPaperChunkMetadata builds metadata for one chunk of an archived paper.
func NewPaperChunkMetadata(doc *Document, chunk *Chunk) Metadata {
	return Metadata{
		Kind:        EntryKindPaperChunk,
		Fingerprint: doc.Fingerprint,
		FilePath:    doc.ArchivedPath,
		FileName:    doc.Name,
		Paper: &PaperChunkMetadata{
			Topic:      doc.Topic,
			TopicScore: doc.TopicScore,
			ChunkIndex: chunk.Index,
			PageStart:  chunk.PageStart,
			PageEnd:    chunk.PageEnd,
		},
	}
}

// NewImageMetadata builds metadata for an image entry.
func NewImageMetadata(doc *Document, img ImageMetadata) Metadata {
	return Metadata{
		Kind:        EntryKindImage,
		Fingerprint: doc.Fingerprint,
		FilePath:    doc.ArchivedPath,
		FileName:    doc.Name,
		Image:       &img,
	}
}

// Validate checks that the variant matches Kind and the common fields are set.
func (m Metadata) Validate() error {
	if m.Fingerprint == "" {
		return fmt.Errorf("%w: metadata without fingerprint", ErrInvalidInput)
	}
	switch m.Kind {
	case EntryKindPaperChunk:
		if m.Paper == nil || m.Image != nil {
			return fmt.Errorf("%w: paper_chunk metadata must carry only paper fields", ErrInvalidInput)
		}
		if m.Paper.PageStart < 1 || m.Paper.PageEnd < m.Paper.PageStart {
			return fmt.Errorf("%w: page range %d-%d", ErrInvalidInput, m.Paper.PageStart, m.Paper.PageEnd)
		}
	case EntryKindImage:
		if m.Image == nil || m.Paper != nil {
			return fmt.Errorf("%w: image metadata must carry only image fields", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown entry kind %q", ErrInvalidInput, m.Kind)
	}
	return nil
}

// IndexEntry is one persisted unit inside a vector collection: one per
// paper chunk, or one per image.
type IndexEntry struct {
	// ID is "<fingerprint>_<chunk index>" for chunks, the fingerprint for images.
	ID string

	// Embedding is the L2-normalised vector.
	Embedding []float32

	// Metadata is the typed metadata record.
	Metadata Metadata

	// Text is the chunk text; empty for images.
	Text string
}

// MetadataFilter selects entries whose metadata equals every non-empty field.
// The zero value matches all entries.
type MetadataFilter struct {
	Fingerprint string
	Kind        EntryKind
	FilePath    string
}

// Matches reports whether m satisfies the filter.
func (f MetadataFilter) Matches(m Metadata) bool {
	if f.Fingerprint != "" && f.Fingerprint != m.Fingerprint {
		return false
	}
	if f.Kind != "" && f.Kind != m.Kind {
		return false
	}
	if f.FilePath != "" && f.FilePath != m.FilePath {
		return false
	}
	return true
}

// Neighbor is a nearest-neighbour result returned by a vector collection.
type Neighbor struct {
	Entry IndexEntry

	// Distance is the cosine distance in [0, 2].
	Distance float64
}
