package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no service backs the selected collection.
	ErrNoSearchService = errors.New("search service is required")

	// ErrSearchFailed wraps the reason a search reported a failed status.
	ErrSearchFailed = errors.New("search failed")
)
