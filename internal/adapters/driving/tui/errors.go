package tui

import "errors"

// ErrMissingSearchService is returned when neither search service is provided.
var ErrMissingSearchService = errors.New("tui: paper or image service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
