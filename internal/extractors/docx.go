package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/mimetype"
)

// DOCX extracts paragraph text from Word documents.
type DOCX struct {
	builtin
}

var _ driven.DocumentExtractor = (*DOCX)(nil)

// NewDOCX creates the DOCX extractor.
func NewDOCX() *DOCX { return &DOCX{} }

func (d *DOCX) Name() string { return "builtin-docx" }

func (d *DOCX) SupportedMIMETypes() []string {
	return []string{mimetype.DOCX}
}

func (d *DOCX) Extract(_ context.Context, data []byte, mimeType string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.NewExtractError(domain.KindParsing, "extract", d.Name(), "not a valid docx archive: "+err.Error())
	}

	content, paragraphCount, err := extractDocumentText(reader)
	if err != nil {
		return nil, domain.NewExtractError(domain.KindParsing, "extract", d.Name(), err.Error())
	}

	result := &domain.ExtractionResult{
		Content:  content,
		MIMEType: mimeType,
	}
	result.SetMetadata("paragraph_count", paragraphCount)
	if title := extractCoreTitle(reader); title != "" {
		result.SetMetadata("title", title)
	}
	return result, nil
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, int, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", 0, err
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", 0, err
		}

		return parseDocumentXML(content)
	}
	return "", 0, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []wordParagraph `xml:"p"`
	} `xml:"body"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text []wordText `xml:"t"`
}

type wordText struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) (string, int, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", 0, err
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				result.WriteString(t.Content)
			}
		}
	}
	return result.String(), len(doc.Body.Paragraphs), nil
}

// corePropertiesXML holds the subset of docProps/core.xml we care about.
type corePropertiesXML struct {
	Title string `xml:"title"`
}

// extractCoreTitle reads the document title from docProps/core.xml.
func extractCoreTitle(reader *zip.Reader) string {
	for _, file := range reader.File {
		if file.Name != "docProps/core.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return ""
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ""
		}

		var props corePropertiesXML
		if err := xml.Unmarshal(content, &props); err != nil {
			return ""
		}
		return strings.TrimSpace(props.Title)
	}
	return ""
}
