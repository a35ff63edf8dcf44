package mcp

import (
	"github.com/custodia-labs/extrakt/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Extraction runs single and batch extractions.
	Extraction driving.ExtractionService

	// Detector resolves MIME types.
	Detector driving.MIMEDetector

	// Plugins exposes the plugin registry. Optional; without it the
	// plugin listing tool is not registered.
	Plugins driving.PluginManager
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Extraction == nil {
		return ErrMissingExtractionService
	}
	if p.Detector == nil {
		return ErrMissingDetector
	}
	return nil
}
