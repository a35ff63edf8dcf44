// Package services implements the extraction engine behind the driving
// ports: the staged extraction pipeline, the batch coordinator and the
// asynchronous calling convention.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/extrakt/internal/chunker"
	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/core/ports/driving"
	"github.com/custodia-labs/extrakt/internal/extractors"
	"github.com/custodia-labs/extrakt/internal/logger"
	"github.com/custodia-labs/extrakt/internal/mimetype"
	"github.com/custodia-labs/extrakt/internal/plugins"
	"github.com/custodia-labs/extrakt/internal/text"
)

// Extraction runs the staged pipeline over single documents and batches.
type Extraction struct {
	registry *plugins.Registry
	builtins *extractors.Set
	detector driving.MIMEDetector
	cache    driven.ResultCache
}

var _ driving.ExtractionService = (*Extraction)(nil)

// NewExtraction wires the pipeline. cache may be nil, which disables
// result caching regardless of configuration.
func NewExtraction(registry *plugins.Registry, builtins *extractors.Set, detector driving.MIMEDetector, cache driven.ResultCache) *Extraction {
	return &Extraction{
		registry: registry,
		builtins: builtins,
		detector: detector,
		cache:    cache,
	}
}

// ExtractFile extracts one file. An empty mimeHint triggers detection.
func (e *Extraction) ExtractFile(ctx context.Context, path, mimeHint string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty: %w", domain.ErrInvalidInput)
	}
	cfg = effectiveConfig(cfg)

	mime := mimetype.Normalize(mimeHint)
	if err := mimetype.Validate(mime); err != nil {
		return nil, err
	}
	if mime == "" {
		detected, err := e.detector.DetectFile(path, cfg.UseCache)
		if err != nil {
			return nil, err
		}
		mime = detected
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return e.run(ctx, data, mime, cfg)
}

// ExtractBytes extracts raw content. An empty mimeHint triggers detection.
func (e *Extraction) ExtractBytes(ctx context.Context, data []byte, mimeHint string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	cfg = effectiveConfig(cfg)

	mime := mimetype.Normalize(mimeHint)
	if err := mimetype.Validate(mime); err != nil {
		return nil, err
	}
	if mime == "" {
		mime = e.detector.DetectBytes(data)
	}

	return e.run(ctx, data, mime, cfg)
}

// run is the pipeline invoker. Stage order is fixed; the context is
// checked between stages so cancellation lands on a stage boundary.
func (e *Extraction) run(ctx context.Context, data []byte, mime string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey := ""
	if cfg.UseCache && e.cache != nil {
		cacheKey = resultCacheKey(data, mime, cfg)
		cached, err := e.cache.Get(ctx, cacheKey)
		if err != nil {
			logger.Warn("cache lookup failed: %v", err)
		} else if cached != nil {
			logger.Debug("cache hit for %s document", mime)
			return cached, nil
		}
	}

	result, err := e.rawExtract(ctx, data, mime, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.EnableQualityProcessing {
		result.SetMetadata("quality_score", text.QualityScore(result.Content))
	}

	if err := e.ocrStage(ctx, data, mime, cfg, result); err != nil {
		return nil, err
	}

	for _, stage := range []driven.ProcessingStage{driven.StageEarly, driven.StageMiddle, driven.StageLate} {
		if err := e.postProcessStage(ctx, stage, result, cfg); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.TokenReduction != nil && cfg.TokenReduction.Mode != "" {
		result.Content = text.Reduce(result.Content, cfg.TokenReduction.Mode)
	}

	if cfg.Chunking != nil {
		result.Chunks = chunker.FromConfig(cfg.Chunking).Split(result.Content)
	}

	if cfg.LanguageDetection != nil {
		result.DetectedLanguages = text.DetectLanguages(result.Content, cfg.LanguageDetection)
	}

	// Validators run last so they see the fully enriched result.
	if err := e.validateStage(ctx, result, cfg); err != nil {
		return nil, err
	}

	if cacheKey != "" {
		if err := e.cache.Put(ctx, cacheKey, result); err != nil {
			logger.Warn("cache store failed: %v", err)
		}
	}

	return result, nil
}

// rawExtract resolves the extractor for the MIME type, registered
// plugins first, builtins second.
func (e *Extraction) rawExtract(ctx context.Context, data []byte, mime string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	ex, ok := e.registry.ExtractorForMIME(mime)
	if !ok {
		ex, ok = e.builtins.ForMIME(mime)
	}
	if !ok {
		return nil, domain.NewExtractError(domain.KindUnsupportedFormat, "extract", "",
			fmt.Sprintf("no extractor handles %q", mime))
	}

	result, err := ex.Extract(ctx, data, mime, cfg)
	if err != nil {
		return nil, wrapStageError(err, "extract", ex.Name())
	}
	if result == nil {
		return nil, domain.NewExtractError(domain.KindInternal, "extract", ex.Name(), "extractor returned no result")
	}
	if result.MIMEType == "" {
		result.MIMEType = mime
	}
	return result, nil
}

// ocrStage recognises text in images. It runs for image inputs and
// whenever OCR is forced.
func (e *Extraction) ocrStage(ctx context.Context, data []byte, mime string, cfg *domain.ExtractionConfig, result *domain.ExtractionResult) error {
	if !cfg.ForceOCR && !isImageMIME(mime) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := cfg.OCRBackendName()
	backend, ok := e.registry.OCRBackend(name)
	if !ok {
		return domain.NewExtractError(domain.KindMissingDependency, "ocr", name,
			fmt.Sprintf("ocr backend %q is not registered", name))
	}

	language := cfg.OCRLanguage()
	if !backend.SupportsLanguage(language) {
		return domain.NewExtractError(domain.KindOCR, "ocr", name,
			fmt.Sprintf("language %q is not supported", language))
	}

	ocrResult, err := backend.ProcessImage(ctx, data, language)
	if err != nil {
		return wrapStageError(err, "ocr", name)
	}
	if ocrResult == nil {
		return nil
	}

	if ocrResult.Content != "" {
		result.Content = ocrResult.Content
	}
	for k, v := range ocrResult.Metadata {
		result.SetMetadata(k, v)
	}
	return nil
}

// postProcessStage runs the processors of one stage in registration
// order, honouring the enable and disable lists of the configuration.
// A processor error fails the whole request.
func (e *Extraction) postProcessStage(ctx context.Context, stage driven.ProcessingStage, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error {
	if cfg.Postprocessor != nil && !cfg.Postprocessor.IsEnabled() {
		return nil
	}

	for _, proc := range e.registry.ProcessorsForStage(stage) {
		if cfg.Postprocessor != nil && !cfg.Postprocessor.ShouldRun(proc.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := proc.Process(ctx, result, cfg); err != nil {
			return wrapStageError(err, "post-process-"+stage.String(), proc.Name())
		}
	}
	return nil
}

// validateStage runs all validators in priority order. The first
// failure is terminal.
func (e *Extraction) validateStage(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error {
	for _, v := range e.registry.Validators() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := v.Validate(ctx, result, cfg); err != nil {
			var ee *domain.ExtractError
			if errors.As(err, &ee) {
				return wrapStageError(err, "validate", v.Name())
			}
			return domain.NewExtractError(domain.KindValidation, "validate", v.Name(), err.Error())
		}
	}
	return nil
}

// wrapStageError stamps stage and plugin onto an error without losing
// an existing classification.
func wrapStageError(err error, stage, plugin string) error {
	var ee *domain.ExtractError
	if errors.As(err, &ee) {
		out := *ee
		if out.Stage == "" {
			out.Stage = stage
		}
		if out.Plugin == "" {
			out.Plugin = plugin
		}
		return &out
	}
	return domain.NewExtractError(domain.KindPlugin, stage, plugin, err.Error())
}

func effectiveConfig(cfg *domain.ExtractionConfig) *domain.ExtractionConfig {
	if cfg == nil {
		return domain.DefaultConfig()
	}
	return cfg
}

func isImageMIME(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// resultCacheKey digests content, MIME type and configuration, so a
// config change never serves a stale result.
func resultCacheKey(data []byte, mime string, cfg *domain.ExtractionConfig) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(mime))
	h.Write([]byte{0})
	h.Write([]byte(cfg.Hash()))
	return hex.EncodeToString(h.Sum(nil))
}
