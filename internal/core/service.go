package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/state"
)

// Pipeline runs the email processing stages in sequence against a shared
// state store. The first stage error halts the run; later stages never see
// partially failed state.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// NewPipeline creates a pipeline over the given stages
func NewPipeline(stages []Stage, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		stages: stages,
		logger: logger,
	}
}

// Run executes every stage in order and returns the final state. On stage
// failure the partially populated state is returned alongside the error so
// callers can inspect what the failing stage recorded.
func (p *Pipeline) Run(ctx context.Context, st *state.Store) (*state.Store, error) {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		start := time.Now()
		if err := stage.Run(ctx, st); err != nil {
			p.logger.Error("Pipeline stage failed, halting",
				zap.String("stage", stage.Name()),
				zap.Error(err))
			return st, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		p.logger.Debug("Pipeline stage completed",
			zap.String("stage", stage.Name()),
			zap.Duration("duration", time.Since(start)))
	}

	return st, nil
}
