// Package mcp provides an MCP (Model Context Protocol) server adapter
// for the extraction engine, so AI assistants can extract documents and
// inspect the plugin registry over stdio or HTTP.
package mcp

import "errors"

// ErrMissingExtractionService is returned when the extraction service is not provided.
var ErrMissingExtractionService = errors.New("mcp: extraction service is required")

// ErrMissingDetector is returned when the MIME detector is not provided.
var ErrMissingDetector = errors.New("mcp: mime detector is required")
