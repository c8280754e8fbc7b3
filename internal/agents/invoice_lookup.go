package agents

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/state"
)

// InvoiceLookup resolves an extracted invoice number against the invoice
// repository. The stage is a no-op when no invoice number was extracted.
type InvoiceLookup struct {
	repo   core.InvoiceRepository
	logger *zap.Logger
}

// NewInvoiceLookup creates the invoice lookup stage
func NewInvoiceLookup(repo core.InvoiceRepository, logger *zap.Logger) *InvoiceLookup {
	return &InvoiceLookup{
		repo:   repo,
		logger: logger,
	}
}

// Name identifies the stage in logs
func (a *InvoiceLookup) Name() string {
	return "invoice_lookup"
}

// Run looks up the invoice and stores its details
func (a *InvoiceLookup) Run(ctx context.Context, st *state.Store) error {
	number := st.GetString(state.KeyInvoiceNumber)
	if number == "" {
		return nil
	}

	invoice, err := a.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, core.ErrInvoiceNotFound) {
			st.Set(state.KeyInvoiceFound, false)
			a.logger.Info("Invoice not found", zap.String("invoice_number", number))
			return nil
		}
		return fmt.Errorf("invoice lookup failed: %w", err)
	}

	st.Set(state.KeyInvoiceFound, true)
	st.Set(state.KeyInvoiceDetails, formatInvoice(invoice))

	a.logger.Info("Invoice found",
		zap.String("invoice_number", invoice.Number),
		zap.String("status", invoice.Status))

	return nil
}

// formatInvoice renders an invoice as a single human-readable line for the
// auto-responder prompt
func formatInvoice(inv *core.Invoice) string {
	details := fmt.Sprintf("Invoice %s from %s: %.2f %s, status %s",
		inv.Number, inv.Vendor, inv.Amount, inv.Currency, inv.Status)
	if !inv.DueAt.IsZero() {
		details += fmt.Sprintf(", due %s", inv.DueAt.Format("2006-01-02"))
	}
	return details
}
