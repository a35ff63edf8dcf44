package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/extrakt/internal/config"
	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// ExtractFileInput is the input schema for the extract_file tool.
type ExtractFileInput struct {
	Path     string `json:"path" jsonschema:"path of the document to extract"`
	MIMEType string `json:"mime_type,omitempty" jsonschema:"MIME type hint; omit to auto-detect"`
	Config   string `json:"config,omitempty" jsonschema:"extraction configuration as a JSON object"`
}

// ExtractFileOutput is the output schema for the extract_file tool.
type ExtractFileOutput struct {
	Content           string         `json:"content"`
	MIMEType          string         `json:"mime_type"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	DetectedLanguages []string       `json:"detected_languages,omitempty"`
	ChunkCount        int            `json:"chunk_count"`
	TableCount        int            `json:"table_count"`
}

// BatchExtractInput is the input schema for the batch_extract_files tool.
type BatchExtractInput struct {
	Paths  []string `json:"paths" jsonschema:"paths of the documents to extract"`
	Config string   `json:"config,omitempty" jsonschema:"extraction configuration as a JSON object"`
}

// BatchExtractOutput is the output schema for the batch_extract_files tool.
type BatchExtractOutput struct {
	Results []BatchItemOutput `json:"results"`
	Count   int               `json:"count"`
}

// BatchItemOutput is one slot of a batch result, in input order.
type BatchItemOutput struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DetectMIMEInput is the input schema for the detect_mime_type tool.
type DetectMIMEInput struct {
	Path string `json:"path" jsonschema:"path of the file to inspect"`
}

// DetectMIMEOutput is the output schema for the detect_mime_type tool.
type DetectMIMEOutput struct {
	MIMEType   string   `json:"mime_type"`
	Extensions []string `json:"extensions,omitempty"`
}

// ListPluginsOutput is the output schema for the list_plugins tool.
type ListPluginsOutput struct {
	OCRBackends        []string `json:"ocr_backends"`
	PostProcessors     []string `json:"post_processors"`
	Validators         []string `json:"validators"`
	DocumentExtractors []string `json:"document_extractors"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_file",
		Description: "Extract text, metadata and structure from a document",
	}, s.handleExtractFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "batch_extract_files",
		Description: "Extract many documents concurrently, results in input order",
	}, s.handleBatchExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_mime_type",
		Description: "Detect the MIME type of a file",
	}, s.handleDetectMIME)

	if s.ports.Plugins != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_plugins",
			Description: "List registered plugins by category",
		}, s.handleListPlugins)
	}
}

func parseConfig(raw string) (*domain.ExtractionConfig, error) {
	if raw == "" {
		return nil, nil
	}
	return config.ParseJSON([]byte(raw))
}

// handleExtractFile handles the extract_file tool invocation.
func (s *Server) handleExtractFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractFileInput,
) (*mcp.CallToolResult, ExtractFileOutput, error) {
	cfg, err := parseConfig(input.Config)
	if err != nil {
		return nil, ExtractFileOutput{}, err
	}

	result, err := s.ports.Extraction.ExtractFile(ctx, input.Path, input.MIMEType, cfg)
	if err != nil {
		return nil, ExtractFileOutput{}, err
	}

	return nil, ExtractFileOutput{
		Content:           result.Content,
		MIMEType:          result.MIMEType,
		Metadata:          result.Metadata,
		DetectedLanguages: result.DetectedLanguages,
		ChunkCount:        len(result.Chunks),
		TableCount:        len(result.Tables),
	}, nil
}

// handleBatchExtract handles the batch_extract_files tool invocation.
func (s *Server) handleBatchExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BatchExtractInput,
) (*mcp.CallToolResult, BatchExtractOutput, error) {
	cfg, err := parseConfig(input.Config)
	if err != nil {
		return nil, BatchExtractOutput{}, err
	}

	batch, err := s.ports.Extraction.BatchExtractFiles(ctx, input.Paths, cfg)
	if err != nil {
		return nil, BatchExtractOutput{}, err
	}

	output := BatchExtractOutput{
		Results: make([]BatchItemOutput, len(batch.Results)),
		Count:   len(batch.Results),
	}
	for i, result := range batch.Results {
		item := BatchItemOutput{Path: input.Paths[i]}
		if result != nil {
			if result.Error != nil {
				item.Error = result.Error.String()
			} else {
				item.Content = result.Content
			}
		}
		output.Results[i] = item
	}

	return nil, output, nil
}

// handleDetectMIME handles the detect_mime_type tool invocation.
func (s *Server) handleDetectMIME(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DetectMIMEInput,
) (*mcp.CallToolResult, DetectMIMEOutput, error) {
	mime, err := s.ports.Detector.DetectFile(input.Path, true)
	if err != nil {
		return nil, DetectMIMEOutput{}, err
	}

	return nil, DetectMIMEOutput{
		MIMEType:   mime,
		Extensions: s.ports.Detector.ExtensionsFor(mime),
	}, nil
}

// handleListPlugins handles the list_plugins tool invocation.
func (s *Server) handleListPlugins(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListPluginsOutput, error) {
	return nil, ListPluginsOutput{
		OCRBackends:        s.ports.Plugins.ListOCRBackends(),
		PostProcessors:     s.ports.Plugins.ListPostProcessors(),
		Validators:         s.ports.Plugins.ListValidators(),
		DocumentExtractors: s.ports.Plugins.ListDocumentExtractors(),
	}, nil
}
