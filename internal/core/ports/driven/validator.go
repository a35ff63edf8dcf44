package driven

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// Validator inspects a finished result and may reject it.
// Validators run after all processing, in descending priority order;
// the first failure is terminal for the request.
type Validator interface {
	Plugin

	// Validate returns nil to accept the result. A non-nil error fails
	// the request with a validation error naming this validator.
	Validate(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error
}
