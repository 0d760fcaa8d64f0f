package mcp

import (
	"github.com/custodia-labs/paperdex/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces used by the MCP server.
// Tools are only registered for the services that are set.
type Ports struct {
	// Papers ingests and searches papers.
	Papers driving.PaperService

	// Images indexes and searches images.
	Images driving.ImageService

	// Settings locates the archive for the topic resources.
	Settings driving.SettingsService
}

// Validate ensures at least one content service is set.
func (p *Ports) Validate() error {
	if p.Papers == nil && p.Images == nil {
		return ErrMissingServices
	}
	return nil
}
