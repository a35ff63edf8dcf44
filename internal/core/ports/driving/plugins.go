package driving

import (
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
)

// PluginManager is the administrative surface over the plugin registry.
// Registration rejects duplicate names with domain.ErrAlreadyExists;
// unregistration of an unknown name is a silent no-op.
type PluginManager interface {
	RegisterOCRBackend(backend driven.OCRBackend, mode driven.AccessMode) error
	UnregisterOCRBackend(name string)
	ListOCRBackends() []string
	ClearOCRBackends()

	RegisterPostProcessor(proc driven.PostProcessor, mode driven.AccessMode) error
	UnregisterPostProcessor(name string)
	ListPostProcessors() []string
	ClearPostProcessors()

	RegisterValidator(v driven.Validator, priority int, mode driven.AccessMode) error
	UnregisterValidator(name string)
	ListValidators() []string
	ClearValidators()

	RegisterDocumentExtractor(ex driven.DocumentExtractor, mode driven.AccessMode) error
	UnregisterDocumentExtractor(name string)
	ListDocumentExtractors() []string
	ClearDocumentExtractors()
}
