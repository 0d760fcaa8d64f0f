// Package chunker provides a page-aware sliding-window text chunker.
package chunker

import (
	"strings"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1200

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultMinEffectiveLength is the minimum number of characters, ignoring
// spaces and newlines, a window needs to become a chunk. Shorter windows are
// stray headers, footers and page numbers.
const DefaultMinEffectiveLength = 30

// pageBreak is appended after every page's text.
const pageBreak = '\n'

// Processor splits per-page text into overlapping chunks and records the
// page range each chunk was taken from.
type Processor struct {
	chunkSize    int
	overlap      int
	minEffective int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMinEffectiveLength sets the noise threshold for emitted chunks.
func WithMinEffectiveLength(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minEffective = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:    DefaultChunkSize,
		overlap:      DefaultChunkOverlap,
		minEffective: DefaultMinEffectiveLength,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Step returns how far the window advances between chunks.
func (p *Processor) Step() int {
	return max(1, p.chunkSize-p.overlap)
}

// Split chunks pages, where pages[i] is the text of page i+1.
// NUL characters are replaced by spaces before chunking. The result is
// empty when the pages contain only whitespace.
func (p *Processor) Split(pages []string) []domain.Chunk {
	stream, pageOf := p.concat(pages)
	if strings.TrimSpace(string(stream)) == "" {
		return nil
	}

	n := len(stream)
	step := p.Step()
	chunks := make([]domain.Chunk, 0, n/step+1)

	for start := 0; start < n; start += step {
		end := min(n, start+p.chunkSize)

		text := strings.TrimSpace(string(stream[start:end]))
		if text != "" && effectiveLength(text) >= p.minEffective {
			chunks = append(chunks, domain.Chunk{
				Index:     len(chunks),
				Text:      text,
				Offset:    start,
				PageStart: pageOf[start],
				PageEnd:   pageOf[end-1],
			})
		}

		if end >= n {
			break
		}
	}

	return chunks
}

// concat joins pages into one rune stream with a page break after each page
// and maps every rune to its 1-based page. Breaks belong to the page before them.
func (p *Processor) concat(pages []string) ([]rune, []int) {
	var stream []rune
	var pageOf []int

	for i, page := range pages {
		page = strings.ReplaceAll(page, "\x00", " ")
		for _, r := range page {
			stream = append(stream, r)
			pageOf = append(pageOf, i+1)
		}
		stream = append(stream, pageBreak)
		pageOf = append(pageOf, i+1)
	}

	return stream, pageOf
}

// effectiveLength counts the characters of s other than spaces and newlines.
func effectiveLength(s string) int {
	n := 0
	for _, r := range s {
		if r == ' ' || r == '\n' {
			continue
		}
		n++
	}
	return n
}
