package driving

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// Outcome pairs a result with its error for the asynchronous calling
// convention. Exactly one of the two fields describes the call; both are
// byte-identical to what the blocking convention returns.
type Outcome struct {
	Result *domain.ExtractionResult
	Err    error
}

// BatchOutcome is the asynchronous completion of a batch call.
type BatchOutcome struct {
	Result *domain.BatchResult
	Err    error
}

// ExtractionService runs single and batched extraction requests.
// Every operation has a blocking and an asynchronous form; the async form
// delivers exactly one value on the returned channel and then closes it.
type ExtractionService interface {
	ExtractFile(ctx context.Context, path, mimeHint string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error)
	ExtractBytes(ctx context.Context, data []byte, mimeHint string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error)

	ExtractFileAsync(ctx context.Context, path, mimeHint string, cfg *domain.ExtractionConfig) <-chan Outcome
	ExtractBytesAsync(ctx context.Context, data []byte, mimeHint string, cfg *domain.ExtractionConfig) <-chan Outcome

	BatchExtractFiles(ctx context.Context, paths []string, cfg *domain.ExtractionConfig) (*domain.BatchResult, error)
	BatchExtractFilesAsync(ctx context.Context, paths []string, cfg *domain.ExtractionConfig) <-chan BatchOutcome
}

// MIMEDetector resolves content types for paths and raw bytes.
type MIMEDetector interface {
	// DetectFile resolves the MIME type of a file, optionally consulting
	// and filling the detection cache.
	DetectFile(path string, useCache bool) (string, error)

	// DetectBytes resolves the MIME type of raw content.
	DetectBytes(data []byte) string

	// ExtensionsFor returns known file extensions for a MIME type.
	ExtensionsFor(mimeType string) []string
}
