// Package extrakt is the public face of the extraction engine. It wraps
// the internal services behind a shared default engine, with per-session
// handles for callers that poll for errors instead of handling returns.
package extrakt

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/extrakt/internal/cache/sqlite"
	"github.com/custodia-labs/extrakt/internal/config"
	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/core/ports/driving"
	"github.com/custodia-labs/extrakt/internal/core/services"
	"github.com/custodia-labs/extrakt/internal/extractors"
	"github.com/custodia-labs/extrakt/internal/lasterror"
	"github.com/custodia-labs/extrakt/internal/logger"
	"github.com/custodia-labs/extrakt/internal/mimetype"
	"github.com/custodia-labs/extrakt/internal/ocr/tesseract"
	"github.com/custodia-labs/extrakt/internal/plugins"
	"github.com/custodia-labs/extrakt/internal/version"
)

// Aliases so callers can name the engine's types without reaching into
// internal packages.
type (
	ExtractionConfig = domain.ExtractionConfig
	OCRConfig        = domain.OCRConfig
	ChunkingConfig   = domain.ChunkingConfig
	ExtractionResult = domain.ExtractionResult
	BatchResult      = domain.BatchResult
	Table            = domain.Table
	Chunk            = domain.Chunk
	ErrorInfo        = domain.ErrorInfo
	Outcome          = driving.Outcome
	BatchOutcome     = driving.BatchOutcome
	ProcessingStage  = driven.ProcessingStage
)

// Post-processing stages.
const (
	StageEarly  = driven.StageEarly
	StageMiddle = driven.StageMiddle
	StageLate   = driven.StageLate
)

// engine is the shared machinery behind every session.
type engine struct {
	registry *plugins.Registry
	detector *mimetype.Detector
	service  *services.Extraction
	slots    *lasterror.Slots
}

var (
	engineOnce sync.Once
	sharedEng  *engine
)

func eng() *engine {
	engineOnce.Do(func() {
		reg := plugins.New()
		detector := mimetype.NewDetector()

		// The bundled OCR backend is best effort; without the binary
		// installed the engine simply starts with none.
		if err := reg.RegisterOCRBackend(tesseract.New(tesseract.NewRunner()), driven.ConcurrentSafe); err != nil {
			logger.Debug("tesseract unavailable: %v", err)
		}

		var cache driven.ResultCache
		if store, err := sqlite.NewStore(cacheDir()); err != nil {
			logger.Warn("result cache disabled: %v", err)
		} else {
			cache = store
		}

		sharedEng = &engine{
			registry: reg,
			detector: detector,
			service:  services.NewExtraction(reg, extractors.Defaults(), detector, cache),
			slots:    lasterror.NewSlots(),
		}
	})
	return sharedEng
}

func cacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "extrakt")
	}
	return ".extrakt-cache"
}

// Version reports the engine version.
func Version() string {
	return version.Version
}

// ParseConfigJSON parses and validates a JSON extraction configuration.
func ParseConfigJSON(data []byte) (*ExtractionConfig, error) {
	return config.ParseJSON(data)
}

// DefaultConfig returns the configuration used when a call passes nil.
func DefaultConfig() *ExtractionConfig {
	return domain.DefaultConfig()
}

// DetectMIMEType resolves the MIME type of a file, optionally using the
// detection cache.
func DetectMIMEType(path string, useCache bool) (string, error) {
	return eng().detector.DetectFile(path, useCache)
}

// DetectMIMETypeBytes resolves the MIME type of raw content.
func DetectMIMETypeBytes(data []byte) string {
	return eng().detector.DetectBytes(data)
}

// ExtensionsForMIME returns known file extensions for a MIME type.
func ExtensionsForMIME(mimeType string) []string {
	return eng().detector.ExtensionsFor(mimeType)
}

// Package-level extraction calls run on the default session.

// ExtractFile extracts one document from disk.
func ExtractFile(ctx context.Context, path, mimeHint string, cfg *ExtractionConfig) (*ExtractionResult, error) {
	return DefaultSession().ExtractFile(ctx, path, mimeHint, cfg)
}

// ExtractBytes extracts one document from memory.
func ExtractBytes(ctx context.Context, data []byte, mimeHint string, cfg *ExtractionConfig) (*ExtractionResult, error) {
	return DefaultSession().ExtractBytes(ctx, data, mimeHint, cfg)
}

// ExtractFileAsync is the asynchronous form of ExtractFile. The returned
// channel delivers exactly one outcome and is then closed.
func ExtractFileAsync(ctx context.Context, path, mimeHint string, cfg *ExtractionConfig) <-chan Outcome {
	return DefaultSession().ExtractFileAsync(ctx, path, mimeHint, cfg)
}

// ExtractBytesAsync is the asynchronous form of ExtractBytes.
func ExtractBytesAsync(ctx context.Context, data []byte, mimeHint string, cfg *ExtractionConfig) <-chan Outcome {
	return DefaultSession().ExtractBytesAsync(ctx, data, mimeHint, cfg)
}

// BatchExtractFiles extracts many documents concurrently. Results keep
// the input order; per-item failures fill their slot instead of failing
// the batch.
func BatchExtractFiles(ctx context.Context, paths []string, cfg *ExtractionConfig) (*BatchResult, error) {
	return DefaultSession().BatchExtractFiles(ctx, paths, cfg)
}

// BatchExtractFilesAsync is the asynchronous form of BatchExtractFiles.
func BatchExtractFilesAsync(ctx context.Context, paths []string, cfg *ExtractionConfig) <-chan BatchOutcome {
	return DefaultSession().BatchExtractFilesAsync(ctx, paths, cfg)
}

// LastError returns the most recent failure of the default session, or
// nil after a successful call.
func LastError() *ErrorInfo {
	return DefaultSession().LastError()
}

// ClearError drops the default session's recorded failure.
func ClearError() {
	DefaultSession().ClearError()
}
