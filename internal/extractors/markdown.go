package extractors

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/mimetype"
)

// Markdown parses markdown and returns the prose without markup.
// Heading structure is preserved in the metadata.
type Markdown struct {
	builtin
	md goldmark.Markdown
}

var _ driven.DocumentExtractor = (*Markdown)(nil)

// NewMarkdown creates the markdown extractor.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

func (m *Markdown) Name() string { return "builtin-markdown" }

func (m *Markdown) SupportedMIMETypes() []string {
	return []string{mimetype.Markdown, "text/x-markdown"}
}

func (m *Markdown) Extract(_ context.Context, data []byte, mimeType string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	root := m.md.Parser().Parse(gmtext.NewReader(data))

	var sb strings.Builder
	var headings []string

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// A blank line between blocks keeps paragraphs apart.
			if _, isBlock := n.(*ast.Paragraph); isBlock {
				sb.WriteString("\n\n")
			}
			if h, isHeading := n.(*ast.Heading); isHeading {
				headings = append(headings, nodeText(h, data))
				sb.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(data))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.AutoLink:
			sb.Write(t.URL(data))
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := t.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(data))
			}
			sb.WriteString("\n")
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, domain.NewExtractError(domain.KindParsing, "extract", m.Name(), err.Error())
	}

	content := strings.TrimSpace(sb.String())

	result := &domain.ExtractionResult{
		Content:  content,
		MIMEType: mimeType,
	}
	if len(headings) > 0 {
		result.SetMetadata("headings", headings)
	}
	return result, nil
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				sb.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
