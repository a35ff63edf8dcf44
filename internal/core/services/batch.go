package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/logger"
)

// BatchExtractFiles extracts many files concurrently. Results come back
// in input order, one slot per path; a failing item fills its slot's
// Error field and never disturbs its neighbours. The returned error is
// reserved for systemic failures.
func (e *Extraction) BatchExtractFiles(ctx context.Context, paths []string, cfg *domain.ExtractionConfig) (*domain.BatchResult, error) {
	cfg = effectiveConfig(cfg)

	results := make([]*domain.ExtractionResult, len(paths))
	if len(paths) == 0 {
		return &domain.BatchResult{Results: results}, nil
	}

	limit := cfg.ConcurrencyLimit()
	if limit > len(paths) {
		limit = len(paths)
	}
	logger.Debug("batch of %d files, concurrency %d", len(paths), limit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			result, err := e.ExtractFile(gctx, path, "", cfg)
			if err != nil {
				// Cancellation is systemic, anything else stays in the slot.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i] = &domain.ExtractionResult{Error: domain.ErrorInfoFrom(err)}
				return nil
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}

	return &domain.BatchResult{Results: results}, nil
}
