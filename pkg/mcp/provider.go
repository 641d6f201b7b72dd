package mcp

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// ContractRunner runs one full inference pass over the configured model.
// *inference.Engine satisfies it.
type ContractRunner interface {
	Run(ctx context.Context, dataset, workspace string) (*models.InferenceResult, error)
}

// EngineProvider computes the inference contract lazily and caches it
// between tool calls. A refresh request recomputes; concurrent callers
// share one run.
type EngineProvider struct {
	runner    ContractRunner
	dataset   string
	workspace string
	logger    *zap.Logger

	mu     sync.Mutex
	cached *models.InferenceResult
}

// NewEngineProvider builds a provider bound to one dataset.
func NewEngineProvider(runner ContractRunner, dataset, workspace string, logger *zap.Logger) *EngineProvider {
	return &EngineProvider{
		runner:    runner,
		dataset:   dataset,
		workspace: workspace,
		logger:    logger.Named("contract-provider"),
	}
}

// Contract returns the cached inference result, computing it on first use
// or when refresh is requested.
func (p *EngineProvider) Contract(ctx context.Context, refresh bool) (*models.InferenceResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && !refresh {
		return p.cached, nil
	}

	result, err := p.runner.Run(ctx, p.dataset, p.workspace)
	if err != nil {
		return nil, err
	}
	p.cached = result
	p.logger.Info("inference contract refreshed",
		zap.String("dataset", p.dataset),
		zap.Int("facts", result.Counts.Facts),
		zap.Int("dimensions", result.Counts.Dimensions))
	return result, nil
}
