package bridge

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
)

// funcMeta is the shared identity and lifecycle of a closure-backed plugin.
type funcMeta struct {
	name      string
	version   string
	languages []string
	initFn    func() error
	closeFn   func() error
}

func (m *funcMeta) Name() string    { return m.name }
func (m *funcMeta) Version() string { return m.version }

func (m *funcMeta) Init() error {
	if m.initFn == nil {
		return nil
	}
	return m.initFn()
}

func (m *funcMeta) Close() error {
	if m.closeFn == nil {
		return nil
	}
	return m.closeFn()
}

// FuncOption customises a closure-backed plugin.
type FuncOption func(*funcMeta)

// WithVersion overrides the reported version, which defaults to "0.0.0".
func WithVersion(version string) FuncOption {
	return func(m *funcMeta) { m.version = version }
}

// WithLanguages restricts an OCR func to the given language codes.
// Without it every language is accepted.
func WithLanguages(languages ...string) FuncOption {
	return func(m *funcMeta) { m.languages = languages }
}

// WithInit installs a hook run at registration time. A hook error
// rejects the registration.
func WithInit(fn func() error) FuncOption {
	return func(m *funcMeta) { m.initFn = fn }
}

// WithClose installs a hook run when the plugin is unregistered or its
// category cleared.
func WithClose(fn func() error) FuncOption {
	return func(m *funcMeta) { m.closeFn = fn }
}

func newFuncMeta(name string, opts []FuncOption) funcMeta {
	m := funcMeta{name: name, version: "0.0.0"}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// OCRFunc adapts a closure to driven.OCRBackend.
type OCRFunc struct {
	funcMeta
	fn func(ctx context.Context, image []byte, language string) (*domain.ExtractionResult, error)
}

var _ driven.OCRBackend = (*OCRFunc)(nil)

// NewOCRFunc wraps fn as an OCR backend named name.
func NewOCRFunc(name string, fn func(ctx context.Context, image []byte, language string) (*domain.ExtractionResult, error), opts ...FuncOption) *OCRFunc {
	return &OCRFunc{funcMeta: newFuncMeta(name, opts), fn: fn}
}

func (o *OCRFunc) ProcessImage(ctx context.Context, image []byte, language string) (*domain.ExtractionResult, error) {
	return o.fn(ctx, image, language)
}

func (o *OCRFunc) SupportsLanguage(language string) bool {
	if len(o.languages) == 0 {
		return true
	}
	for _, l := range o.languages {
		if l == language {
			return true
		}
	}
	return false
}

// PostProcessorFunc adapts a closure to driven.PostProcessor.
type PostProcessorFunc struct {
	funcMeta
	stage driven.ProcessingStage
	fn    func(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error
}

var _ driven.PostProcessor = (*PostProcessorFunc)(nil)

// NewPostProcessorFunc wraps fn as a post-processor running at stage.
func NewPostProcessorFunc(name string, stage driven.ProcessingStage, fn func(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error, opts ...FuncOption) *PostProcessorFunc {
	return &PostProcessorFunc{funcMeta: newFuncMeta(name, opts), stage: stage, fn: fn}
}

func (p *PostProcessorFunc) Stage() driven.ProcessingStage { return p.stage }

func (p *PostProcessorFunc) Process(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error {
	return p.fn(ctx, result, cfg)
}

// ValidatorFunc adapts a closure to driven.Validator.
type ValidatorFunc struct {
	funcMeta
	fn func(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error
}

var _ driven.Validator = (*ValidatorFunc)(nil)

// NewValidatorFunc wraps fn as a validator.
func NewValidatorFunc(name string, fn func(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error, opts ...FuncOption) *ValidatorFunc {
	return &ValidatorFunc{funcMeta: newFuncMeta(name, opts), fn: fn}
}

func (v *ValidatorFunc) Validate(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error {
	return v.fn(ctx, result, cfg)
}

// ExtractorFunc adapts a closure to driven.DocumentExtractor.
type ExtractorFunc struct {
	funcMeta
	mimes []string
	fn    func(ctx context.Context, data []byte, mimeType string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error)
}

var _ driven.DocumentExtractor = (*ExtractorFunc)(nil)

// NewExtractorFunc wraps fn as a document extractor claiming mimes.
func NewExtractorFunc(name string, mimes []string, fn func(ctx context.Context, data []byte, mimeType string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error), opts ...FuncOption) *ExtractorFunc {
	return &ExtractorFunc{funcMeta: newFuncMeta(name, opts), mimes: mimes, fn: fn}
}

func (e *ExtractorFunc) SupportedMIMETypes() []string { return e.mimes }

func (e *ExtractorFunc) Extract(ctx context.Context, data []byte, mimeType string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	return e.fn(ctx, data, mimeType, cfg)
}
