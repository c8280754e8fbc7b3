package di

import (
	"go.uber.org/dig"

	"github.com/mikey/llm-email-pipeline/internal/config"
	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/factory"
	"github.com/mikey/llm-email-pipeline/internal/logging"
	"github.com/mikey/llm-email-pipeline/internal/ports"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewInvoiceDBFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewPipelineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register invoice repository
	if err := container.Provide(func(f *factory.InvoiceDBFactory) (core.InvoiceRepository, error) {
		return f.CreateInvoiceRepository()
	}); err != nil {
		return nil, err
	}

	// Register pipeline
	if err := container.Provide(func(f *factory.PipelineFactory, llm core.LLMClient, repo core.InvoiceRepository) *core.Pipeline {
		return f.CreatePipeline(llm, repo)
	}); err != nil {
		return nil, err
	}

	// Register ingestor
	if err := container.Provide(func(f *factory.IngestFactory, pipeline *core.Pipeline) (ports.Ingestor, error) {
		return f.CreateIngestor(pipeline)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
