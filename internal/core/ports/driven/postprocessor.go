package driven

import (
	"context"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// ProcessingStage is a named point in the pipeline controlling when a
// post-processor runs. Within a stage, processors run in registration order.
type ProcessingStage int

const (
	StageEarly ProcessingStage = iota
	StageMiddle
	StageLate
)

// String returns the boundary spelling of the stage.
func (s ProcessingStage) String() string {
	switch s {
	case StageEarly:
		return "early"
	case StageMiddle:
		return "middle"
	case StageLate:
		return "late"
	default:
		return "unknown"
	}
}

// ParseStage converts the boundary spelling back into a stage.
// Unknown spellings default to middle.
func ParseStage(s string) ProcessingStage {
	switch s {
	case "early":
		return StageEarly
	case "late":
		return StageLate
	default:
		return StageMiddle
	}
}

// PostProcessor enriches or rewrites an extraction result in place.
// Each processor receives the full result, allowing cumulative metadata
// enrichment across the chain.
type PostProcessor interface {
	Plugin

	// Stage returns when in the pipeline this processor runs.
	Stage() ProcessingStage

	// Process mutates the result. An error fails the request with
	// stage and plugin context.
	Process(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error
}
