package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent extraction and registry failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Registering a plugin under a name that is taken returns this error;
	// callers must unregister first if they intend to replace it.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a MIME type no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMissingDependency indicates a named plugin or external tool is absent.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrParsing indicates a decode failure in an extractor.
	ErrParsing = errors.New("parsing failed")

	// ErrOCR indicates the OCR backend failed on an image.
	ErrOCR = errors.New("ocr failed")

	// ErrValidationFailed indicates a registered validator rejected a result.
	ErrValidationFailed = errors.New("validation failed")

	// ErrPluginFailure indicates a plugin callback returned an error.
	ErrPluginFailure = errors.New("plugin failure")

	// ErrInternal indicates a coordinator or registry invariant violation.
	ErrInternal = errors.New("internal error")
)

// ErrorKind is the machine-readable classification of an extraction failure.
// It crosses the boundary alongside the human-readable message.
type ErrorKind string

const (
	KindMissingDependency ErrorKind = "missing_dependency"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindParsing           ErrorKind = "parsing_error"
	KindOCR               ErrorKind = "ocr_error"
	KindValidation        ErrorKind = "validation_error"
	KindPlugin            ErrorKind = "plugin_error"
	KindInternal          ErrorKind = "internal_error"
)

// ExtractError carries the failing pipeline stage and plugin name alongside
// the error kind, so a stage failure is reportable as "which stage, which
// plugin" without string parsing.
type ExtractError struct {
	Kind    ErrorKind
	Stage   string
	Plugin  string
	Message string
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	switch {
	case e.Stage != "" && e.Plugin != "":
		return fmt.Sprintf("%s: stage %s (plugin %s): %s", e.Kind, e.Stage, e.Plugin, e.Message)
	case e.Stage != "":
		return fmt.Sprintf("%s: stage %s: %s", e.Kind, e.Stage, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap maps the kind onto the matching sentinel so callers can use errors.Is.
func (e *ExtractError) Unwrap() error {
	switch e.Kind {
	case KindMissingDependency:
		return ErrMissingDependency
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	case KindParsing:
		return ErrParsing
	case KindOCR:
		return ErrOCR
	case KindValidation:
		return ErrValidationFailed
	case KindPlugin:
		return ErrPluginFailure
	default:
		return ErrInternal
	}
}

// NewExtractError builds an ExtractError for a pipeline stage failure.
func NewExtractError(kind ErrorKind, stage, plugin, message string) *ExtractError {
	return &ExtractError{Kind: kind, Stage: stage, Plugin: plugin, Message: message}
}

// ErrorInfoFrom converts an error into the boundary representation.
// ExtractErrors keep their kind and stage context; anything else is
// reported as an internal error.
func ErrorInfoFrom(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var ee *ExtractError
	if errors.As(err, &ee) {
		return &ErrorInfo{
			Kind:    ee.Kind,
			Stage:   ee.Stage,
			Plugin:  ee.Plugin,
			Message: ee.Message,
		}
	}
	return &ErrorInfo{Kind: KindInternal, Message: err.Error()}
}

// ErrorInfo is the fixed-shape error record attached to an ExtractionResult.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Stage   string    `json:"stage,omitempty"`
	Plugin  string    `json:"plugin,omitempty"`
	Message string    `json:"message"`
}

// String renders the error info the way ExtractError does.
func (e *ErrorInfo) String() string {
	ee := ExtractError{Kind: e.Kind, Stage: e.Stage, Plugin: e.Plugin, Message: e.Message}
	return ee.Error()
}
