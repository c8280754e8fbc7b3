package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/state"
	"github.com/mikey/llm-email-pipeline/internal/utils"
)

const invoiceExtractorSystem = "You are an invoice data extraction system. Respond only with JSON."

const invoiceExtractorPrompt = `Extract the invoice number from the following email, if one is present.
Invoice numbers usually look like "INV-2024-001", "#123" or similar.

Respond with a JSON object containing:
- invoice_number: string (the invoice number, or "" when none is present)

Email:
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// InvoiceExtractor pulls the invoice number out of invoice emails. The stage
// is a no-op for any other category.
type InvoiceExtractor struct {
	llm         core.LLMClient
	text        *utils.TextProcessor
	maxBodySize int
	logger      *zap.Logger
}

// NewInvoiceExtractor creates the invoice extraction stage
func NewInvoiceExtractor(llm core.LLMClient, text *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *InvoiceExtractor {
	return &InvoiceExtractor{
		llm:         llm,
		text:        text,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name identifies the stage in logs
func (a *InvoiceExtractor) Name() string {
	return "invoice_extractor"
}

// Run extracts the invoice number and stores it when found
func (a *InvoiceExtractor) Run(ctx context.Context, st *state.Store) error {
	if st.GetString(state.KeyEmailCategory) != core.CategoryInvoice {
		a.logger.Debug("Skipping invoice extraction for non-invoice email",
			zap.String("category", st.GetString(state.KeyEmailCategory)))
		return nil
	}

	body := a.text.ProcessText(st.GetString(state.KeyEmailBody), a.maxBodySize)
	prompt := fmt.Sprintf(invoiceExtractorPrompt, st.GetString(state.KeyEmailSubject), body)

	responseText, err := a.llm.Complete(ctx, invoiceExtractorSystem, prompt)
	if err != nil {
		return fmt.Errorf("invoice extraction request failed: %w", err)
	}

	var extracted struct {
		InvoiceNumber string `json:"invoice_number"`
	}
	if err := json.Unmarshal([]byte(responseText), &extracted); err != nil {
		jsonStr, extractErr := utils.ExtractJSON(responseText)
		if extractErr != nil {
			return fmt.Errorf("failed to parse invoice extraction response: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonStr), &extracted); err != nil {
			return fmt.Errorf("failed to parse invoice extraction response: %w", err)
		}
	}

	number := strings.TrimSpace(extracted.InvoiceNumber)
	if number == "" {
		a.logger.Info("No invoice number found in invoice email")
		return nil
	}

	st.Set(state.KeyInvoiceNumber, number)
	a.logger.Info("Invoice number extracted", zap.String("invoice_number", number))

	return nil
}
