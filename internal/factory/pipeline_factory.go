package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/agents"
	"github.com/mikey/llm-email-pipeline/internal/config"
	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/suppress"
	"github.com/mikey/llm-email-pipeline/internal/utils"
)

// PipelineFactory assembles the stage sequence into a pipeline
type PipelineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPipelineFactory creates a new pipeline factory
func NewPipelineFactory(cfg *config.Config, logger *zap.Logger) *PipelineFactory {
	return &PipelineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePipeline builds the full stage sequence: parse, classify, summarize,
// extract invoice number, look up the invoice, draft an auto-response.
func (f *PipelineFactory) CreatePipeline(llm core.LLMClient, repo core.InvoiceRepository) *core.Pipeline {
	pipelineCfg := f.cfg.GetPipeline()
	text := utils.NewTextProcessor(f.logger)
	checker := suppress.NewChecker(pipelineCfg.SuppressedDomains, f.logger)

	stages := []core.Stage{
		agents.NewParser(f.logger),
		agents.NewClassifier(llm, text, pipelineCfg.MaxBodySize, f.logger),
		agents.NewSummarizer(llm, text, pipelineCfg.MaxBodySize, f.logger),
		agents.NewInvoiceExtractor(llm, text, pipelineCfg.MaxBodySize, f.logger),
		agents.NewInvoiceLookup(repo, f.logger),
		agents.NewResponder(llm, checker, f.logger),
	}

	return core.NewPipeline(stages, f.logger)
}
