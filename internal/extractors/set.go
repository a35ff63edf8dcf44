package extractors

import (
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/version"
)

// builtin carries the shared identity of the built-in extractors.
// They need no lifecycle work.
type builtin struct{}

func (builtin) Version() string { return version.Version }
func (builtin) Init() error     { return nil }
func (builtin) Close() error    { return nil }

// Set resolves built-in extractors by MIME type.
type Set struct {
	byMIME map[string]driven.DocumentExtractor
	order  []driven.DocumentExtractor
}

// NewSet indexes the given extractors. Earlier entries win overlapping
// MIME claims.
func NewSet(extractors ...driven.DocumentExtractor) *Set {
	s := &Set{byMIME: make(map[string]driven.DocumentExtractor)}
	for _, ex := range extractors {
		s.order = append(s.order, ex)
		for _, m := range ex.SupportedMIMETypes() {
			if _, taken := s.byMIME[m]; !taken {
				s.byMIME[m] = ex
			}
		}
	}
	return s
}

// Defaults returns the full built-in set.
func Defaults() *Set {
	return NewSet(
		NewPDF(),
		NewDOCX(),
		NewXLSX(),
		NewMarkdown(),
		NewHTML(),
		NewImage(),
		NewPlainText(),
	)
}

// ForMIME returns the built-in extractor for a MIME type.
func (s *Set) ForMIME(mimeType string) (driven.DocumentExtractor, bool) {
	ex, ok := s.byMIME[mimeType]
	return ex, ok
}

// All returns the extractors in registration order.
func (s *Set) All() []driven.DocumentExtractor {
	return append([]driven.DocumentExtractor(nil), s.order...)
}
