package plugins

import (
	"context"
	"sync"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
)

// Exclusive wrappers serialise calls into plugins registered with
// driven.ExclusiveAccess. Only the work method takes the lock; Name,
// Version and Stage are immutable metadata and stay lock-free.

type exclusiveOCR struct {
	mu    sync.Mutex
	inner driven.OCRBackend
}

func (w *exclusiveOCR) Name() string    { return w.inner.Name() }
func (w *exclusiveOCR) Version() string { return w.inner.Version() }
func (w *exclusiveOCR) Init() error     { return w.inner.Init() }
func (w *exclusiveOCR) Close() error    { return w.inner.Close() }

func (w *exclusiveOCR) SupportsLanguage(language string) bool {
	return w.inner.SupportsLanguage(language)
}

func (w *exclusiveOCR) ProcessImage(ctx context.Context, image []byte, language string) (*domain.ExtractionResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.ProcessImage(ctx, image, language)
}

type exclusiveProcessor struct {
	mu    sync.Mutex
	inner driven.PostProcessor
}

func (w *exclusiveProcessor) Name() string                  { return w.inner.Name() }
func (w *exclusiveProcessor) Version() string               { return w.inner.Version() }
func (w *exclusiveProcessor) Init() error                   { return w.inner.Init() }
func (w *exclusiveProcessor) Close() error                  { return w.inner.Close() }
func (w *exclusiveProcessor) Stage() driven.ProcessingStage { return w.inner.Stage() }

func (w *exclusiveProcessor) Process(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Process(ctx, result, cfg)
}

type exclusiveValidator struct {
	mu    sync.Mutex
	inner driven.Validator
}

func (w *exclusiveValidator) Name() string    { return w.inner.Name() }
func (w *exclusiveValidator) Version() string { return w.inner.Version() }
func (w *exclusiveValidator) Init() error     { return w.inner.Init() }
func (w *exclusiveValidator) Close() error    { return w.inner.Close() }

func (w *exclusiveValidator) Validate(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Validate(ctx, result, cfg)
}

type exclusiveExtractor struct {
	mu    sync.Mutex
	inner driven.DocumentExtractor
}

func (w *exclusiveExtractor) Name() string                  { return w.inner.Name() }
func (w *exclusiveExtractor) Version() string               { return w.inner.Version() }
func (w *exclusiveExtractor) Init() error                   { return w.inner.Init() }
func (w *exclusiveExtractor) Close() error                  { return w.inner.Close() }
func (w *exclusiveExtractor) SupportedMIMETypes() []string { return w.inner.SupportedMIMETypes() }

func (w *exclusiveExtractor) Extract(ctx context.Context, data []byte, mimeType string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Extract(ctx, data, mimeType, cfg)
}
