package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"runtime"
)

// ExtractionConfig controls one extraction request. The zero value is not
// useful; start from DefaultConfig and override.
//
// The same structure crosses the host boundary as JSON and is loadable from
// an extrakt.toml file, hence the dual tags.
type ExtractionConfig struct {
	// UseCache enables the result cache for file extractions.
	UseCache bool `json:"use_cache" toml:"use_cache"`

	// ForceOCR runs the OCR stage even for documents with a text layer.
	ForceOCR bool `json:"force_ocr" toml:"force_ocr"`

	// OCR selects and configures the OCR backend.
	OCR *OCRConfig `json:"ocr,omitempty" toml:"ocr,omitempty"`

	// Chunking enables content chunking when set.
	Chunking *ChunkingConfig `json:"chunking,omitempty" toml:"chunking,omitempty"`

	// Images configures image handling during extraction.
	Images *ImageConfig `json:"images,omitempty" toml:"images,omitempty"`

	// PDFOptions tunes PDF decoding.
	PDFOptions *PDFConfig `json:"pdf_options,omitempty" toml:"pdf_options,omitempty"`

	// TokenReduction shrinks content before chunking when set.
	TokenReduction *TokenReductionConfig `json:"token_reduction,omitempty" toml:"token_reduction,omitempty"`

	// LanguageDetection populates ExtractionResult.DetectedLanguages.
	LanguageDetection *LanguageDetectionConfig `json:"language_detection,omitempty" toml:"language_detection,omitempty"`

	// Postprocessor filters which registered post-processors run.
	Postprocessor *PostprocessorConfig `json:"postprocessor,omitempty" toml:"postprocessor,omitempty"`

	// EnableQualityProcessing adds a quality score to the result metadata.
	EnableQualityProcessing bool `json:"enable_quality_processing" toml:"enable_quality_processing"`

	// MaxConcurrentExtractions bounds batch concurrency.
	// Zero means the default of NumCPU * 2.
	MaxConcurrentExtractions int `json:"max_concurrent_extractions,omitempty" toml:"max_concurrent_extractions,omitempty"`
}

// OCRConfig selects an OCR backend by registry name.
type OCRConfig struct {
	// Backend is the registered backend name. Defaults to "tesseract".
	Backend string `json:"backend" toml:"backend"`

	// Language is the OCR language code (e.g. "eng", "deu").
	Language string `json:"language" toml:"language"`
}

// ChunkingConfig controls the chunking step.
type ChunkingConfig struct {
	// MaxChars is the maximum characters per chunk.
	MaxChars int `json:"max_chars" toml:"max_chars"`

	// MaxOverlap is the number of characters shared between adjacent chunks.
	MaxOverlap int `json:"max_overlap" toml:"max_overlap"`
}

// ImageConfig controls image handling.
type ImageConfig struct {
	// Extract keeps image metadata (dimensions, format) in the result.
	Extract bool `json:"extract" toml:"extract"`
}

// PDFConfig tunes the PDF decoder.
type PDFConfig struct {
	// ExtractTables attempts table recovery from page text.
	ExtractTables bool `json:"extract_tables" toml:"extract_tables"`

	// Password decrypts protected documents.
	Password string `json:"password,omitempty" toml:"password,omitempty"`
}

// TokenReductionConfig controls content reduction.
// Mode is one of "off", "light" (whitespace collapsing) or "moderate"
// (whitespace collapsing plus stopword removal).
type TokenReductionConfig struct {
	Mode string `json:"mode" toml:"mode"`
}

// LanguageDetectionConfig controls the language detection step.
type LanguageDetectionConfig struct {
	// TopK caps how many languages are reported. Zero means 3.
	TopK int `json:"top_k,omitempty" toml:"top_k,omitempty"`

	// MinConfidence drops languages below this share of stopword hits.
	MinConfidence float64 `json:"min_confidence,omitempty" toml:"min_confidence,omitempty"`
}

// PostprocessorConfig filters which registered post-processors run.
// Enabled defaults to true when nil. EnabledProcessors, when non-nil, is an
// allow-list; otherwise DisabledProcessors is a deny-list.
type PostprocessorConfig struct {
	Enabled            *bool    `json:"enabled,omitempty" toml:"enabled,omitempty"`
	EnabledProcessors  []string `json:"enabled_processors,omitempty" toml:"enabled_processors,omitempty"`
	DisabledProcessors []string `json:"disabled_processors,omitempty" toml:"disabled_processors,omitempty"`
}

// IsEnabled reports whether the post-processing stages run at all.
func (c *PostprocessorConfig) IsEnabled() bool {
	if c == nil || c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// ShouldRun reports whether the named processor is selected by the filter.
func (c *PostprocessorConfig) ShouldRun(name string) bool {
	if c == nil {
		return true
	}
	if c.EnabledProcessors != nil {
		for _, n := range c.EnabledProcessors {
			if n == name {
				return true
			}
		}
		return false
	}
	for _, n := range c.DisabledProcessors {
		if n == name {
			return false
		}
	}
	return true
}

// DefaultConfig returns the engine defaults: caching on, no OCR forcing,
// no optional steps.
func DefaultConfig() *ExtractionConfig {
	return &ExtractionConfig{
		UseCache: true,
	}
}

// ConcurrencyLimit resolves MaxConcurrentExtractions against the default.
func (c *ExtractionConfig) ConcurrencyLimit() int {
	if c != nil && c.MaxConcurrentExtractions > 0 {
		return c.MaxConcurrentExtractions
	}
	return runtime.NumCPU() * 2
}

// OCRBackendName resolves the configured backend name, defaulting to
// "tesseract".
func (c *ExtractionConfig) OCRBackendName() string {
	if c != nil && c.OCR != nil && c.OCR.Backend != "" {
		return c.OCR.Backend
	}
	return "tesseract"
}

// OCRLanguage resolves the configured OCR language, defaulting to "eng".
func (c *ExtractionConfig) OCRLanguage() string {
	if c != nil && c.OCR != nil && c.OCR.Language != "" {
		return c.OCR.Language
	}
	return "eng"
}

// Hash returns a stable digest of the configuration, used as part of
// result cache keys so a config change invalidates cached entries.
func (c *ExtractionConfig) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		// Marshalling a plain struct of value types cannot fail at runtime;
		// fall back to an empty key rather than panic.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy so a batch can share one config safely.
func (c *ExtractionConfig) Clone() *ExtractionConfig {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	if c.OCR != nil {
		v := *c.OCR
		out.OCR = &v
	}
	if c.Chunking != nil {
		v := *c.Chunking
		out.Chunking = &v
	}
	if c.Images != nil {
		v := *c.Images
		out.Images = &v
	}
	if c.PDFOptions != nil {
		v := *c.PDFOptions
		out.PDFOptions = &v
	}
	if c.TokenReduction != nil {
		v := *c.TokenReduction
		out.TokenReduction = &v
	}
	if c.LanguageDetection != nil {
		v := *c.LanguageDetection
		out.LanguageDetection = &v
	}
	if c.Postprocessor != nil {
		v := PostprocessorConfig{
			EnabledProcessors:  append([]string(nil), c.Postprocessor.EnabledProcessors...),
			DisabledProcessors: append([]string(nil), c.Postprocessor.DisabledProcessors...),
		}
		if c.Postprocessor.Enabled != nil {
			b := *c.Postprocessor.Enabled
			v.Enabled = &b
		}
		out.Postprocessor = &v
	}
	return &out
}
