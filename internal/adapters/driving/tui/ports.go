// Package tui provides an interactive terminal user interface for searching
// the archive. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"fmt"

	"github.com/custodia-labs/paperdex/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Papers searches paper chunks. Optional if Images is set.
	Papers driving.PaperService

	// Images searches images. Optional if Papers is set.
	Images driving.ImageService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(papers driving.PaperService, images driving.ImageService) *Ports {
	return &Ports{
		Papers: papers,
		Images: images,
	}
}

// Validate ensures at least one search service is set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Papers == nil && p.Images == nil {
		return fmt.Errorf("%w: %w", ErrInvalidPorts, ErrMissingSearchService)
	}
	return nil
}
