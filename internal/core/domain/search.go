package domain

import "strconv"

// ChunkHit is one chunk-level result of a paper query.
type ChunkHit struct {
	File      string  `json:"file" yaml:"file"`
	Topic     string  `json:"topic" yaml:"topic"`
	PageStart int     `json:"-" yaml:"-"`
	PageEnd   int     `json:"-" yaml:"-"`
	Pages     string  `json:"pages" yaml:"pages"`
	Score     float64 `json:"score" yaml:"score"`
	Snippet   string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// FileHit is one file-level result after aggregation.
type FileHit struct {
	File      string  `json:"file" yaml:"file"`
	Topic     string  `json:"topic" yaml:"topic"`
	BestScore float64 `json:"best_score" yaml:"best_score"`
	BestPages string  `json:"best_pages" yaml:"best_pages"`
}

// ImageHit is one result of a text-to-image query.
type ImageHit struct {
	File  string  `json:"file" yaml:"file"`
	Score float64 `json:"score" yaml:"score"`
}

// PaperSearchResult is the outcome record of a paper query.
type PaperSearchResult struct {
	Status    Status     `json:"status" yaml:"status"`
	Reason    string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	Query     string     `json:"query" yaml:"query"`
	TopChunks []ChunkHit `json:"top_chunks,omitempty" yaml:"top_chunks,omitempty"`
	TopFiles  []FileHit  `json:"top_files" yaml:"top_files"`
}

// ImageSearchResult is the outcome record of a text-to-image query.
type ImageSearchResult struct {
	Status Status     `json:"status" yaml:"status"`
	Reason string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	Query  string     `json:"query" yaml:"query"`
	Hits   []ImageHit `json:"hits" yaml:"hits"`
}

// PageRange formats a page range as "start-end".
func PageRange(start, end int) string {
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

// PaperSearchOptions tunes a paper query.
type PaperSearchOptions struct {
	// TopK is the number of chunk hits to retrieve.
	TopK int

	// FilesOnly drops chunk hits from the result.
	FilesOnly bool
}

// AddPaperOptions tunes a single paper ingestion.
type AddPaperOptions struct {
	// Topics are the candidate labels; empty assigns the fallback topic.
	Topics []string

	// NoMove indexes the file in place instead of copying it into the archive.
	NoMove bool
}
