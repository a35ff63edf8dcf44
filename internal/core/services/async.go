package services

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driving"
)

// The asynchronous forms run the blocking call on a goroutine and
// deliver exactly one outcome before closing the channel. The channel
// is buffered, an abandoned caller never leaks the goroutine.

// ExtractFileAsync is the asynchronous form of ExtractFile.
func (e *Extraction) ExtractFileAsync(ctx context.Context, path, mimeHint string, cfg *domain.ExtractionConfig) <-chan driving.Outcome {
	out := make(chan driving.Outcome, 1)
	go func() {
		defer close(out)
		result, err := e.ExtractFile(ctx, path, mimeHint, cfg)
		out <- driving.Outcome{Result: result, Err: err}
	}()
	return out
}

// ExtractBytesAsync is the asynchronous form of ExtractBytes.
func (e *Extraction) ExtractBytesAsync(ctx context.Context, data []byte, mimeHint string, cfg *domain.ExtractionConfig) <-chan driving.Outcome {
	out := make(chan driving.Outcome, 1)
	go func() {
		defer close(out)
		result, err := e.ExtractBytes(ctx, data, mimeHint, cfg)
		out <- driving.Outcome{Result: result, Err: err}
	}()
	return out
}

// BatchExtractFilesAsync is the asynchronous form of BatchExtractFiles.
func (e *Extraction) BatchExtractFilesAsync(ctx context.Context, paths []string, cfg *domain.ExtractionConfig) <-chan driving.BatchOutcome {
	out := make(chan driving.BatchOutcome, 1)
	go func() {
		defer close(out)
		result, err := e.BatchExtractFiles(ctx, paths, cfg)
		out <- driving.BatchOutcome{Result: result, Err: err}
	}()
	return out
}
