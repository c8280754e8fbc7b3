package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/adapters/invoicedb"
	"github.com/mikey/llm-email-pipeline/internal/config"
	"github.com/mikey/llm-email-pipeline/internal/core"
)

// InvoiceDBFactory creates invoice repositories based on configuration
type InvoiceDBFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewInvoiceDBFactory creates a new invoice repository factory
func NewInvoiceDBFactory(cfg *config.Config, logger *zap.Logger) *InvoiceDBFactory {
	return &InvoiceDBFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateInvoiceRepository creates an invoice repository based on the configuration
func (f *InvoiceDBFactory) CreateInvoiceRepository() (core.InvoiceRepository, error) {
	dbConfig := f.cfg.GetInvoiceDB()

	switch dbConfig.Type {
	case "memory":
		return invoicedb.NewMemoryRepository(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(dbConfig.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return invoicedb.NewSQLiteRepository(dbConfig.SQLitePath, f.logger)
	case "mysql":
		return invoicedb.NewMySQLRepository(dbConfig.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported invoice database type: %s", dbConfig.Type)
	}
}
