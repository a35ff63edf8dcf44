// Package chunker splits extracted text into fixed-size chunks.
package chunker

import (
	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// DefaultMaxChars is the default number of characters per chunk.
const DefaultMaxChars = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Chunker splits content into fixed-size chunks with overlap.
type Chunker struct {
	maxChars int
	overlap  int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxChars sets the chunk size in characters.
func WithMaxChars(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxChars = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxChars: DefaultMaxChars,
		overlap:  DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.maxChars {
		c.overlap = c.maxChars / 4
	}

	return c
}

// FromConfig builds a chunker from the chunking section of an extraction
// config. A nil section gives the defaults.
func FromConfig(cfg *domain.ChunkingConfig) *Chunker {
	if cfg == nil {
		return New()
	}
	return New(WithMaxChars(cfg.MaxChars), WithOverlap(cfg.MaxOverlap))
}

// Split cuts content into chunks carrying their index and byte offsets.
// Empty content produces no chunks.
func (c *Chunker) Split(content string) []domain.Chunk {
	if content == "" {
		return nil
	}

	contentLen := len(content)
	step := c.maxChars - c.overlap

	estimated := (contentLen / step) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	index := 0
	start := 0

	for start < contentLen {
		end := start + c.maxChars
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, domain.Chunk{
			Content:     content[start:end],
			Index:       index,
			StartOffset: start,
			EndOffset:   end,
		})
		index++

		start += step

		// Avoid infinite loop for edge cases
		if step <= 0 {
			break
		}
	}

	return chunks
}
