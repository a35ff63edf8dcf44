package domain

// ExtractionResult is the canonical output of one extraction request.
// Ownership transfers to the caller; the engine keeps no reference.
type ExtractionResult struct {
	// Content is the full text content after extraction and post-processing.
	Content string `json:"content"`

	// MIMEType is the resolved content type (e.g., "application/pdf").
	MIMEType string `json:"mime_type"`

	// Metadata contains arbitrary key-value pairs accumulated by the
	// extractor and the post-processing pipeline.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Tables holds tables in document order.
	Tables []Table `json:"tables,omitempty"`

	// DetectedLanguages lists language codes ordered by confidence.
	// Populated only when language detection is configured.
	DetectedLanguages []string `json:"detected_languages,omitempty"`

	// Chunks holds the split content when chunking is configured.
	Chunks []Chunk `json:"chunks,omitempty"`

	// Error is set instead of aborting siblings when the request fails
	// inside a batch; nil on success.
	Error *ErrorInfo `json:"error,omitempty"`
}

// Table represents one extracted table.
type Table struct {
	// Cells is the table content as rows of columns.
	Cells [][]string `json:"cells"`

	// Markdown is the rendered markdown representation.
	Markdown string `json:"markdown"`

	// PageNumber is the 1-indexed page the table was found on.
	PageNumber int `json:"page_number"`
}

// Chunk is one slice of the content produced by the chunking step.
type Chunk struct {
	// Content is the text of this chunk.
	Content string `json:"content"`

	// Index is the ordinal position within the document.
	Index int `json:"index"`

	// StartOffset and EndOffset are byte offsets into the full content.
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`
}

// SetMetadata stores a key, allocating the map on first use.
func (r *ExtractionResult) SetMetadata(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}

// BatchResult pairs per-item results with an optional systemic error.
// Results[i] always answers the i-th request of the batch, regardless of
// completion order.
type BatchResult struct {
	Results []*ExtractionResult `json:"results"`

	// OverallError is set only for systemic failures (malformed batch
	// input, pool exhaustion); per-item failures live in Results[i].Error.
	OverallError string `json:"overall_error,omitempty"`
}
