package extractors

import (
	"bytes"
	"context"
	"strings"

	"github.com/wudi/pdfkit/extractor"
	"github.com/wudi/pdfkit/ir"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/mimetype"
)

// PDF extracts page text from PDF documents.
type PDF struct {
	builtin
}

var _ driven.DocumentExtractor = (*PDF)(nil)

// NewPDF creates the PDF extractor.
func NewPDF() *PDF { return &PDF{} }

func (p *PDF) Name() string { return "builtin-pdf" }

func (p *PDF) SupportedMIMETypes() []string {
	return []string{mimetype.PDF}
}

func (p *PDF) Extract(ctx context.Context, data []byte, mimeType string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	pipe := ir.NewDefault()
	doc, err := pipe.Parse(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewExtractError(domain.KindParsing, "extract", p.Name(), "parsing pdf: "+err.Error())
	}

	ext, err := extractor.New(doc.Decoded())
	if err != nil {
		return nil, domain.NewExtractError(domain.KindParsing, "extract", p.Name(), "opening pdf: "+err.Error())
	}

	pages, err := ext.ExtractText()
	if err != nil {
		return nil, domain.NewExtractError(domain.KindParsing, "extract", p.Name(), "extracting text: "+err.Error())
	}

	var sb strings.Builder
	for i, page := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(page.Content)
	}

	result := &domain.ExtractionResult{
		Content:  sb.String(),
		MIMEType: mimeType,
	}
	result.SetMetadata("page_count", len(pages))
	return result, nil
}
