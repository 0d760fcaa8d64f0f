// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// Modality selects which collection the search view queries.
type Modality int

const (
	// ModalityPapers searches paper chunks.
	ModalityPapers Modality = iota
	// ModalityImages searches images.
	ModalityImages
)

// String returns the string representation of the modality.
func (m Modality) String() string {
	switch m {
	case ModalityPapers:
		return "papers"
	case ModalityImages:
		return "images"
	default:
		return "unknown"
	}
}

// Next returns the other modality.
func (m Modality) Next() Modality {
	if m == ModalityPapers {
		return ModalityImages
	}
	return ModalityPapers
}

// SearchRequested is a command to perform a search.
type SearchRequested struct {
	Query    string
	Modality Modality
}

// SearchCompleted carries search results back to the model. Exactly one
// of Papers and Images is set when Err is nil.
type SearchCompleted struct {
	Modality Modality
	Papers   *domain.PaperSearchResult
	Images   *domain.ImageSearchResult
	Err      error
}

// ModalityChanged is sent when the search view switches collections.
type ModalityChanged struct {
	Modality Modality
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search input and results view.
	ViewSearch ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
