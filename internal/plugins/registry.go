// Package plugins implements the process-wide plugin registry.
//
// The registry is category-keyed: OCR backends, post-processors, validators
// and document extractors each have their own namespace. All mutation and
// lookup is guarded by one RWMutex; lookups hand out the plugin value
// itself, so in-flight extractions keep working on the snapshot they hold
// even if the category is cleared underneath them.
package plugins

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/core/ports/driving"
	"github.com/custodia-labs/extrakt/internal/logger"
)

// Ensure Registry implements the management interface.
var _ driving.PluginManager = (*Registry)(nil)

// Category names a plugin namespace.
type Category string

const (
	CategoryOCRBackend        Category = "ocr-backend"
	CategoryPostProcessor     Category = "post-processor"
	CategoryValidator         Category = "validator"
	CategoryDocumentExtractor Category = "document-extractor"
)

type processorEntry struct {
	name string
	proc driven.PostProcessor
}

type validatorEntry struct {
	name     string
	priority int
	seq      int
	val      driven.Validator
}

type extractorEntry struct {
	name  string
	mimes []string
	ex    driven.DocumentExtractor
}

// Registry holds all registered plugins across categories.
type Registry struct {
	mu sync.RWMutex

	ocr      map[string]driven.OCRBackend
	ocrOrder []string

	processors []processorEntry

	validators []validatorEntry
	valSeq     int

	extractors []extractorEntry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		ocr: make(map[string]driven.OCRBackend),
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, created lazily on first use.
// There is no teardown; the registry lives until process exit.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// validateName enforces the plugin naming rules shared by all categories.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty: %w", domain.ErrInvalidInput)
	}
	if strings.ContainsFunc(name, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }) {
		return fmt.Errorf("plugin name %q cannot contain whitespace: %w", name, domain.ErrInvalidInput)
	}
	return nil
}

func closePlugin(category Category, p driven.Plugin) {
	if err := p.Close(); err != nil {
		logger.Warn("closing %s %q: %v", category, p.Name(), err)
	}
}

// --- OCR backends ---

// RegisterOCRBackend adds a backend under its name.
// Duplicate names are rejected with domain.ErrAlreadyExists.
func (r *Registry) RegisterOCRBackend(backend driven.OCRBackend, mode driven.AccessMode) error {
	name := backend.Name()
	if err := validateName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ocr[name]; ok {
		return fmt.Errorf("ocr backend %q: %w", name, domain.ErrAlreadyExists)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initialising ocr backend %q: %w", name, err)
	}
	if mode == driven.ExclusiveAccess {
		backend = &exclusiveOCR{inner: backend}
	}
	r.ocr[name] = backend
	r.ocrOrder = append(r.ocrOrder, name)
	logger.Debug("registered ocr backend %q (%s)", name, mode)
	return nil
}

// UnregisterOCRBackend removes a backend. Unknown names are a no-op.
func (r *Registry) UnregisterOCRBackend(name string) {
	r.mu.Lock()
	backend, ok := r.ocr[name]
	if ok {
		delete(r.ocr, name)
		r.ocrOrder = removeName(r.ocrOrder, name)
	}
	r.mu.Unlock()

	if ok {
		closePlugin(CategoryOCRBackend, backend)
	}
}

// OCRBackend looks up a backend by name.
func (r *Registry) OCRBackend(name string) (driven.OCRBackend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.ocr[name]
	return b, ok
}

// ListOCRBackends returns backend names in registration order.
func (r *Registry) ListOCRBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.ocrOrder...)
}

// ClearOCRBackends removes every backend in the category.
func (r *Registry) ClearOCRBackends() {
	r.mu.Lock()
	backends := make([]driven.OCRBackend, 0, len(r.ocr))
	for _, name := range r.ocrOrder {
		backends = append(backends, r.ocr[name])
	}
	r.ocr = make(map[string]driven.OCRBackend)
	r.ocrOrder = nil
	r.mu.Unlock()

	for _, b := range backends {
		closePlugin(CategoryOCRBackend, b)
	}
}

// --- Post-processors ---

// RegisterPostProcessor adds a processor. Within a stage, processors run
// in registration order.
func (r *Registry) RegisterPostProcessor(proc driven.PostProcessor, mode driven.AccessMode) error {
	name := proc.Name()
	if err := validateName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.processors {
		if e.name == name {
			return fmt.Errorf("post-processor %q: %w", name, domain.ErrAlreadyExists)
		}
	}
	if err := proc.Init(); err != nil {
		return fmt.Errorf("initialising post-processor %q: %w", name, err)
	}
	if mode == driven.ExclusiveAccess {
		proc = &exclusiveProcessor{inner: proc}
	}
	r.processors = append(r.processors, processorEntry{name: name, proc: proc})
	logger.Debug("registered post-processor %q (stage %s)", name, proc.Stage())
	return nil
}

// UnregisterPostProcessor removes a processor. Unknown names are a no-op.
func (r *Registry) UnregisterPostProcessor(name string) {
	r.mu.Lock()
	var removed driven.PostProcessor
	for i, e := range r.processors {
		if e.name == name {
			removed = e.proc
			r.processors = append(r.processors[:i], r.processors[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if removed != nil {
		closePlugin(CategoryPostProcessor, removed)
	}
}

// ProcessorsForStage returns the processors of one stage in registration
// order. The returned slice is a snapshot.
func (r *Registry) ProcessorsForStage(stage driven.ProcessingStage) []driven.PostProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []driven.PostProcessor
	for _, e := range r.processors {
		if e.proc.Stage() == stage {
			out = append(out, e.proc)
		}
	}
	return out
}

// ListPostProcessors returns processor names in registration order.
func (r *Registry) ListPostProcessors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.processors))
	for i, e := range r.processors {
		names[i] = e.name
	}
	return names
}

// ClearPostProcessors removes every processor in the category.
func (r *Registry) ClearPostProcessors() {
	r.mu.Lock()
	entries := r.processors
	r.processors = nil
	r.mu.Unlock()

	for _, e := range entries {
		closePlugin(CategoryPostProcessor, e.proc)
	}
}

// --- Validators ---

// RegisterValidator adds a validator with its priority. Higher priority
// validators run first.
func (r *Registry) RegisterValidator(v driven.Validator, priority int, mode driven.AccessMode) error {
	name := v.Name()
	if err := validateName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.validators {
		if e.name == name {
			return fmt.Errorf("validator %q: %w", name, domain.ErrAlreadyExists)
		}
	}
	if err := v.Init(); err != nil {
		return fmt.Errorf("initialising validator %q: %w", name, err)
	}
	if mode == driven.ExclusiveAccess {
		v = &exclusiveValidator{inner: v}
	}
	r.valSeq++
	r.validators = append(r.validators, validatorEntry{name: name, priority: priority, seq: r.valSeq, val: v})
	// Keep descending priority order, registration order within a priority.
	sort.SliceStable(r.validators, func(i, j int) bool {
		if r.validators[i].priority != r.validators[j].priority {
			return r.validators[i].priority > r.validators[j].priority
		}
		return r.validators[i].seq < r.validators[j].seq
	})
	logger.Debug("registered validator %q (priority %d)", name, priority)
	return nil
}

// UnregisterValidator removes a validator. Unknown names are a no-op.
func (r *Registry) UnregisterValidator(name string) {
	r.mu.Lock()
	var removed driven.Validator
	for i, e := range r.validators {
		if e.name == name {
			removed = e.val
			r.validators = append(r.validators[:i], r.validators[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if removed != nil {
		closePlugin(CategoryValidator, removed)
	}
}

// Validators returns a snapshot in execution order (priority descending).
func (r *Registry) Validators() []driven.Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driven.Validator, len(r.validators))
	for i, e := range r.validators {
		out[i] = e.val
	}
	return out
}

// ListValidators returns validator names in execution order.
func (r *Registry) ListValidators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.validators))
	for i, e := range r.validators {
		names[i] = e.name
	}
	return names
}

// ClearValidators removes every validator in the category.
func (r *Registry) ClearValidators() {
	r.mu.Lock()
	entries := r.validators
	r.validators = nil
	r.mu.Unlock()

	for _, e := range entries {
		closePlugin(CategoryValidator, e.val)
	}
}

// --- Document extractors ---

// RegisterDocumentExtractor adds an extractor keyed by the MIME types it
// claims. For overlapping MIME types the earliest registration wins.
func (r *Registry) RegisterDocumentExtractor(ex driven.DocumentExtractor, mode driven.AccessMode) error {
	name := ex.Name()
	if err := validateName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.extractors {
		if e.name == name {
			return fmt.Errorf("document extractor %q: %w", name, domain.ErrAlreadyExists)
		}
	}
	if err := ex.Init(); err != nil {
		return fmt.Errorf("initialising document extractor %q: %w", name, err)
	}
	mimes := append([]string(nil), ex.SupportedMIMETypes()...)
	if mode == driven.ExclusiveAccess {
		ex = &exclusiveExtractor{inner: ex}
	}
	r.extractors = append(r.extractors, extractorEntry{name: name, mimes: mimes, ex: ex})
	logger.Debug("registered document extractor %q (%d mime types)", name, len(mimes))
	return nil
}

// UnregisterDocumentExtractor removes an extractor. Unknown names are a no-op.
func (r *Registry) UnregisterDocumentExtractor(name string) {
	r.mu.Lock()
	var removed driven.DocumentExtractor
	for i, e := range r.extractors {
		if e.name == name {
			removed = e.ex
			r.extractors = append(r.extractors[:i], r.extractors[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if removed != nil {
		closePlugin(CategoryDocumentExtractor, removed)
	}
}

// ExtractorForMIME returns the first registered extractor claiming the
// MIME type.
func (r *Registry) ExtractorForMIME(mimeType string) (driven.DocumentExtractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.extractors {
		for _, m := range e.mimes {
			if m == mimeType {
				return e.ex, true
			}
		}
	}
	return nil, false
}

// ListDocumentExtractors returns extractor names in registration order.
func (r *Registry) ListDocumentExtractors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.extractors))
	for i, e := range r.extractors {
		names[i] = e.name
	}
	return names
}

// ClearDocumentExtractors removes every extractor in the category.
func (r *Registry) ClearDocumentExtractors() {
	r.mu.Lock()
	entries := r.extractors
	r.extractors = nil
	r.mu.Unlock()

	for _, e := range entries {
		closePlugin(CategoryDocumentExtractor, e.ex)
	}
}

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
