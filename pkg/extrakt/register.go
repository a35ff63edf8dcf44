package extrakt

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/plugins/bridge"
)

// FuncOption customises a registered closure (version, languages,
// init/close hooks).
type FuncOption = bridge.FuncOption

// WithVersion overrides the reported plugin version.
func WithVersion(version string) FuncOption { return bridge.WithVersion(version) }

// WithLanguages restricts an OCR backend to the given language codes.
func WithLanguages(languages ...string) FuncOption { return bridge.WithLanguages(languages...) }

// WithInit installs a hook run at registration; an error rejects the
// registration.
func WithInit(fn func() error) FuncOption { return bridge.WithInit(fn) }

// WithClose installs a hook run at unregistration.
func WithClose(fn func() error) FuncOption { return bridge.WithClose(fn) }

// OCRFn receives image bytes and a language code and returns the
// recognised content.
type OCRFn = func(ctx context.Context, image []byte, language string) (*ExtractionResult, error)

// ProcessorFn mutates a result in place during post-processing.
type ProcessorFn = func(ctx context.Context, result *ExtractionResult, cfg *ExtractionConfig) error

// ValidatorFn inspects a finished result; an error fails the extraction.
type ValidatorFn = func(ctx context.Context, result *ExtractionResult, cfg *ExtractionConfig) error

// ExtractorFn turns raw bytes of a claimed MIME type into a result.
type ExtractorFn = func(ctx context.Context, data []byte, mimeType string, cfg *ExtractionConfig) (*ExtractionResult, error)

// RegisterOCRBackend registers fn as an OCR backend. Duplicate names are
// rejected.
func RegisterOCRBackend(name string, fn OCRFn, opts ...FuncOption) error {
	return eng().registry.RegisterOCRBackend(bridge.NewOCRFunc(name, fn, opts...), driven.ConcurrentSafe)
}

// UnregisterOCRBackend removes an OCR backend; unknown names are a no-op.
func UnregisterOCRBackend(name string) {
	eng().registry.UnregisterOCRBackend(name)
}

// ListOCRBackends lists registered OCR backend names in registration order.
func ListOCRBackends() []string {
	return eng().registry.ListOCRBackends()
}

// ClearOCRBackends removes every OCR backend.
func ClearOCRBackends() {
	eng().registry.ClearOCRBackends()
}

// RegisterPostProcessor registers fn to run at the given stage.
func RegisterPostProcessor(name string, stage ProcessingStage, fn ProcessorFn, opts ...FuncOption) error {
	return eng().registry.RegisterPostProcessor(bridge.NewPostProcessorFunc(name, stage, fn, opts...), driven.ConcurrentSafe)
}

// UnregisterPostProcessor removes a post-processor; unknown names are a
// no-op.
func UnregisterPostProcessor(name string) {
	eng().registry.UnregisterPostProcessor(name)
}

// ListPostProcessors lists registered post-processor names.
func ListPostProcessors() []string {
	return eng().registry.ListPostProcessors()
}

// ClearPostProcessors removes every post-processor.
func ClearPostProcessors() {
	eng().registry.ClearPostProcessors()
}

// RegisterValidator registers fn with a priority; higher priorities run
// first and the first failure is terminal.
func RegisterValidator(name string, priority int, fn ValidatorFn, opts ...FuncOption) error {
	return eng().registry.RegisterValidator(bridge.NewValidatorFunc(name, fn, opts...), priority, driven.ConcurrentSafe)
}

// UnregisterValidator removes a validator; unknown names are a no-op.
func UnregisterValidator(name string) {
	eng().registry.UnregisterValidator(name)
}

// ListValidators lists registered validator names in execution order.
func ListValidators() []string {
	return eng().registry.ListValidators()
}

// ClearValidators removes every validator.
func ClearValidators() {
	eng().registry.ClearValidators()
}

// RegisterDocumentExtractor registers fn for the claimed MIME types.
// Registered extractors take precedence over the builtins; the first
// registration wins a contested MIME type.
func RegisterDocumentExtractor(name string, mimeTypes []string, fn ExtractorFn, opts ...FuncOption) error {
	return eng().registry.RegisterDocumentExtractor(bridge.NewExtractorFunc(name, mimeTypes, fn, opts...), driven.ConcurrentSafe)
}

// UnregisterDocumentExtractor removes an extractor; unknown names are a
// no-op.
func UnregisterDocumentExtractor(name string) {
	eng().registry.UnregisterDocumentExtractor(name)
}

// ListDocumentExtractors lists registered extractor names.
func ListDocumentExtractors() []string {
	return eng().registry.ListDocumentExtractors()
}

// ClearDocumentExtractors removes every registered extractor. The
// builtins are unaffected.
func ClearDocumentExtractors() {
	eng().registry.ClearDocumentExtractors()
}
