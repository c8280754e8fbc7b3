// Package invoicedb provides InvoiceRepository implementations over SQLite,
// MySQL and an in-memory map.
package invoicedb

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
)

// MemoryRepository is an in-memory implementation of the InvoiceRepository
// interface, used by default and in tests.
type MemoryRepository struct {
	invoices map[string]*core.Invoice
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewMemoryRepository creates a new in-memory invoice repository
func NewMemoryRepository(logger *zap.Logger) *MemoryRepository {
	return &MemoryRepository{
		invoices: make(map[string]*core.Invoice),
		logger:   logger,
	}
}

// GetByNumber retrieves an invoice by its number
func (r *MemoryRepository) GetByNumber(ctx context.Context, number string) (*core.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoice, ok := r.invoices[number]
	if !ok {
		return nil, core.ErrInvoiceNotFound
	}

	// Copy so callers cannot mutate the stored record
	out := *invoice
	return &out, nil
}

// Put stores an invoice record
func (r *MemoryRepository) Put(ctx context.Context, invoice *core.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *invoice
	r.invoices[invoice.Number] = &stored
	return nil
}
