// Package mcp provides an MCP (Model Context Protocol) server adapter for paperdex.
// It lets AI assistants search and grow the local paper and image archive.
package mcp

import "errors"

// ErrMissingServices is returned when neither the paper nor the image service is provided.
var ErrMissingServices = errors.New("mcp: paper or image service is required")
