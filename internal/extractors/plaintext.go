package extractors

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/mimetype"
)

// PlainText passes textual content through, normalising line endings.
type PlainText struct {
	builtin
}

var _ driven.DocumentExtractor = (*PlainText)(nil)

// NewPlainText creates the plain text extractor.
func NewPlainText() *PlainText { return &PlainText{} }

func (p *PlainText) Name() string { return "builtin-plaintext" }

func (p *PlainText) SupportedMIMETypes() []string {
	return []string{mimetype.PlainText, mimetype.CSV, mimetype.JSON, mimetype.YAML, "application/xml", "text/xml"}
}

func (p *PlainText) Extract(_ context.Context, data []byte, mimeType string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	if !utf8.Valid(data) {
		return nil, domain.NewExtractError(domain.KindParsing, "extract", p.Name(), "content is not valid utf-8")
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	result := &domain.ExtractionResult{
		Content:  content,
		MIMEType: mimeType,
	}
	result.SetMetadata("line_count", strings.Count(content, "\n")+1)
	return result, nil
}
