package extractors

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/mimetype"
)

// XLSX extracts sheets from workbooks as tables, one table per sheet.
type XLSX struct {
	builtin
}

var _ driven.DocumentExtractor = (*XLSX)(nil)

// NewXLSX creates the XLSX extractor.
func NewXLSX() *XLSX { return &XLSX{} }

func (x *XLSX) Name() string { return "builtin-xlsx" }

func (x *XLSX) SupportedMIMETypes() []string {
	return []string{mimetype.XLSX}
}

func (x *XLSX) Extract(_ context.Context, data []byte, mimeType string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewExtractError(domain.KindParsing, "extract", x.Name(), "not a valid workbook: "+err.Error())
	}
	defer f.Close()

	var tables []domain.Table
	var content strings.Builder

	for sheetIdx, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, domain.NewExtractError(domain.KindParsing, "extract", x.Name(),
				"reading sheet "+sheet+": "+err.Error())
		}
		if len(rows) == 0 {
			continue
		}

		markdown := renderMarkdownTable(rows)
		tables = append(tables, domain.Table{
			Cells:      rows,
			Markdown:   markdown,
			PageNumber: sheetIdx + 1,
		})

		if content.Len() > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString("## " + sheet + "\n\n")
		content.WriteString(markdown)
	}

	result := &domain.ExtractionResult{
		Content:  content.String(),
		MIMEType: mimeType,
		Tables:   tables,
	}
	result.SetMetadata("sheet_count", len(f.GetSheetList()))
	return result, nil
}

// renderMarkdownTable formats rows as a GitHub-style table, treating the
// first row as the header.
func renderMarkdownTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}

	var sb strings.Builder
	for i, row := range rows {
		sb.WriteString("|")
		for col := 0; col < width; col++ {
			cell := ""
			if col < len(row) {
				cell = strings.ReplaceAll(row[col], "|", "\\|")
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")

		if i == 0 {
			sb.WriteString("|")
			for col := 0; col < width; col++ {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
