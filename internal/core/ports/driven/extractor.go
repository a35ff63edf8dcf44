package driven

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// DocumentExtractor decodes one family of document formats.
// Registered extractors take precedence over the built-in decoder for the
// MIME types they claim.
type DocumentExtractor interface {
	Plugin

	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract decodes the raw bytes into a result. The resolved MIME
	// type is passed so one extractor can serve several related types.
	Extract(ctx context.Context, data []byte, mimeType string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error)
}
