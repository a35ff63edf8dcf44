package driven

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// ResultCache stores finished extraction results keyed by a digest of the
// source and the configuration. Cache failures are non-fatal; callers log
// and continue.
type ResultCache interface {
	// Get returns the cached result for the key, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) (*domain.ExtractionResult, error)

	// Put stores a result under the key, overwriting any previous entry.
	Put(ctx context.Context, key string, result *domain.ExtractionResult) error

	// Clear drops all cached entries.
	Clear(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}
