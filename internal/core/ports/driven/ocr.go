package driven

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// OCRBackend turns image bytes into extracted text.
// Backends are selected by name from the OCR category of the plugin
// registry via ExtractionConfig.OCR.Backend.
type OCRBackend interface {
	Plugin

	// ProcessImage runs OCR over the raw image bytes for the given
	// language code and returns the recognised content.
	ProcessImage(ctx context.Context, image []byte, language string) (*domain.ExtractionResult, error)

	// SupportsLanguage reports whether the backend can handle the
	// language code (e.g. "eng", "deu").
	SupportsLanguage(language string) bool
}
