package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/adapters/ingest"
	"github.com/mikey/llm-email-pipeline/internal/config"
	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/ports"
)

// IngestFactory creates ingestion surfaces
type IngestFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(cfg *config.Config, logger *zap.Logger) *IngestFactory {
	return &IngestFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateIngestor creates the SMTP ingestor from the configuration
func (f *IngestFactory) CreateIngestor(pipeline *core.Pipeline) (ports.Ingestor, error) {
	readTimeout, err := f.cfg.GetDuration("smtp.read_timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid smtp read timeout: %w", err)
	}
	writeTimeout, err := f.cfg.GetDuration("smtp.write_timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid smtp write timeout: %w", err)
	}

	return ingest.NewSMTPIngestor(
		pipeline,
		f.logger,
		f.cfg.GetString("smtp.listen_address"),
		f.cfg.GetString("smtp.domain"),
		int64(f.cfg.GetInt("smtp.max_message_bytes")),
		readTimeout,
		writeTimeout,
	), nil
}
