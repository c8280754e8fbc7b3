package core

import (
	"context"
	"errors"

	"github.com/mikey/llm-email-pipeline/internal/state"
)

// ErrInvoiceNotFound is returned by InvoiceRepository implementations when no
// record matches the requested number
var ErrInvoiceNotFound = errors.New("invoice not found")

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Complete sends a prompt to the model and returns its text response
	Complete(ctx context.Context, system string, prompt string) (string, error)
}

// InvoiceRepository defines the interface for invoice lookups
type InvoiceRepository interface {
	// GetByNumber retrieves an invoice by its number
	GetByNumber(ctx context.Context, number string) (*Invoice, error)

	// Put stores an invoice record
	Put(ctx context.Context, invoice *Invoice) error
}

// Stage is one step of the email processing pipeline. Stages communicate
// through the shared state store only.
type Stage interface {
	// Name identifies the stage in logs
	Name() string

	// Run executes the stage against the shared state
	Run(ctx context.Context, st *state.Store) error
}
