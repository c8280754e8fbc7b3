package agents

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/adapters/invoicedb"
	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/state"
	"github.com/mikey/llm-email-pipeline/internal/suppress"
	"github.com/mikey/llm-email-pipeline/internal/utils"
)

// fakeLLM returns a canned response and records the last request
type fakeLLM struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (f *fakeLLM) Complete(ctx context.Context, system string, prompt string) (string, error) {
	f.lastSystem = system
	f.lastPrompt = prompt
	return f.response, f.err
}

const testEML = "From: billing@acme.test\r\n" +
	"To: ap@example.com\r\n" +
	"Subject: Invoice INV-2024-001\r\n" +
	"Date: Wed, 01 Jan 2020 10:00:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Please pay invoice INV-2024-001.\r\n"

func textProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(zap.NewNop())
}

// TestParser_Success tests that the parser merges extraction results into the
// shared state under the contract keys
func TestParser_Success(t *testing.T) {
	st := state.NewStore()
	st.Set(state.KeyEmailFileBytesB64, base64.StdEncoding.EncodeToString([]byte(testEML)))

	parser := NewParser(zap.NewNop())
	require.NoError(t, parser.Run(context.Background(), st))

	assert.Equal(t, "Invoice INV-2024-001", st.GetString(state.KeyEmailSubject))
	assert.Equal(t, "billing@acme.test", st.GetString(state.KeySenderEmail))
	assert.Equal(t, "ap@example.com", st.GetString(state.KeyRecipientEmail))
	assert.Equal(t, "2020-01-01T10:00:00Z", st.GetString(state.KeyEmailDate))
	assert.Contains(t, st.GetString(state.KeyEmailBody), "Please pay invoice")
	assert.Equal(t, []string{}, st.GetStringSlice(state.KeyEmailAttachments))
	assert.False(t, st.Has(state.KeyParsingStatus))
}

// TestParser_Failure tests that a parse failure records the error keys and
// halts the pipeline
func TestParser_Failure(t *testing.T) {
	st := state.NewStore()

	parser := NewParser(zap.NewNop())
	err := parser.Run(context.Background(), st)

	require.Error(t, err)
	assert.Equal(t, "error", st.GetString(state.KeyParsingStatus))
	assert.Contains(t, st.GetString(state.KeyParsingMessage), "No email file")
	assert.False(t, st.Has(state.KeyEmailSubject))
}

// TestClassifier tests category assignment from a JSON response
func TestClassifier(t *testing.T) {
	llm := &fakeLLM{response: `{"category": "invoice", "confidence": 0.95, "reason": "mentions an invoice"}`}
	st := state.NewStore()
	st.Set(state.KeyEmailSubject, "Invoice INV-2024-001")
	st.Set(state.KeySenderEmail, "billing@acme.test")
	st.Set(state.KeyEmailBody, "Please pay.")

	classifier := NewClassifier(llm, textProcessor(), 4096, zap.NewNop())
	require.NoError(t, classifier.Run(context.Background(), st))

	assert.Equal(t, core.CategoryInvoice, st.GetString(state.KeyEmailCategory))
	confidence, _ := st.Get(state.KeyCategoryConfidence)
	assert.Equal(t, 0.95, confidence)
	assert.Contains(t, llm.lastPrompt, "Invoice INV-2024-001")
	assert.Contains(t, llm.lastPrompt, "billing@acme.test")
}

// TestClassifier_FencedResponse tests the fallback for JSON wrapped in a code
// fence
func TestClassifier_FencedResponse(t *testing.T) {
	llm := &fakeLLM{response: "```json\n{\"category\": \"support\", \"confidence\": 0.8}\n```"}
	st := state.NewStore()

	classifier := NewClassifier(llm, textProcessor(), 4096, zap.NewNop())
	require.NoError(t, classifier.Run(context.Background(), st))

	assert.Equal(t, core.CategorySupport, st.GetString(state.KeyEmailCategory))
}

// TestClassifier_UnknownCategory tests the fallback to "other" for categories
// the model invented
func TestClassifier_UnknownCategory(t *testing.T) {
	llm := &fakeLLM{response: `{"category": "spam", "confidence": 0.9}`}
	st := state.NewStore()

	classifier := NewClassifier(llm, textProcessor(), 4096, zap.NewNop())
	require.NoError(t, classifier.Run(context.Background(), st))

	assert.Equal(t, core.CategoryOther, st.GetString(state.KeyEmailCategory))
}

// TestClassifier_BadResponse tests that an unparseable response fails the stage
func TestClassifier_BadResponse(t *testing.T) {
	llm := &fakeLLM{response: "I cannot classify this email."}
	st := state.NewStore()

	classifier := NewClassifier(llm, textProcessor(), 4096, zap.NewNop())
	err := classifier.Run(context.Background(), st)

	require.Error(t, err)
	assert.False(t, st.Has(state.KeyEmailCategory))
}

// TestClassifier_LLMError tests error propagation from the model
func TestClassifier_LLMError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model unavailable")}

	classifier := NewClassifier(llm, textProcessor(), 4096, zap.NewNop())
	err := classifier.Run(context.Background(), state.NewStore())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "classification request failed")
}

// TestSummarizer tests that the summary is trimmed and stored
func TestSummarizer(t *testing.T) {
	llm := &fakeLLM{response: "  The sender asks for payment of invoice INV-2024-001.  \n"}
	st := state.NewStore()
	st.Set(state.KeyEmailBody, "Please pay.")

	summarizer := NewSummarizer(llm, textProcessor(), 4096, zap.NewNop())
	require.NoError(t, summarizer.Run(context.Background(), st))

	assert.Equal(t, "The sender asks for payment of invoice INV-2024-001.",
		st.GetString(state.KeyEmailSummary))
}

// TestInvoiceExtractor_SkipsNonInvoice tests that the stage is a no-op for
// other categories
func TestInvoiceExtractor_SkipsNonInvoice(t *testing.T) {
	llm := &fakeLLM{response: `{"invoice_number": "INV-2024-001"}`}
	st := state.NewStore()
	st.Set(state.KeyEmailCategory, core.CategorySupport)

	extractor := NewInvoiceExtractor(llm, textProcessor(), 4096, zap.NewNop())
	require.NoError(t, extractor.Run(context.Background(), st))

	assert.False(t, st.Has(state.KeyInvoiceNumber))
	assert.Empty(t, llm.lastPrompt)
}

// TestInvoiceExtractor tests invoice number extraction for invoice emails
func TestInvoiceExtractor(t *testing.T) {
	llm := &fakeLLM{response: `{"invoice_number": " INV-2024-001 "}`}
	st := state.NewStore()
	st.Set(state.KeyEmailCategory, core.CategoryInvoice)
	st.Set(state.KeyEmailSubject, "Invoice INV-2024-001")
	st.Set(state.KeyEmailBody, "Please pay.")

	extractor := NewInvoiceExtractor(llm, textProcessor(), 4096, zap.NewNop())
	require.NoError(t, extractor.Run(context.Background(), st))

	assert.Equal(t, "INV-2024-001", st.GetString(state.KeyInvoiceNumber))
}

// TestInvoiceExtractor_NoNumber tests that an empty extraction leaves the key
// unset
func TestInvoiceExtractor_NoNumber(t *testing.T) {
	llm := &fakeLLM{response: `{"invoice_number": ""}`}
	st := state.NewStore()
	st.Set(state.KeyEmailCategory, core.CategoryInvoice)

	extractor := NewInvoiceExtractor(llm, textProcessor(), 4096, zap.NewNop())
	require.NoError(t, extractor.Run(context.Background(), st))

	assert.False(t, st.Has(state.KeyInvoiceNumber))
}

// TestInvoiceLookup_Found tests a successful repository lookup
func TestInvoiceLookup_Found(t *testing.T) {
	repo := invoicedb.NewMemoryRepository(zap.NewNop())
	require.NoError(t, repo.Put(context.Background(), &core.Invoice{
		Number:   "INV-2024-001",
		Vendor:   "Acme Corp",
		Amount:   1250.50,
		Currency: "EUR",
		Status:   "open",
		DueAt:    time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	}))

	st := state.NewStore()
	st.Set(state.KeyInvoiceNumber, "INV-2024-001")

	lookup := NewInvoiceLookup(repo, zap.NewNop())
	require.NoError(t, lookup.Run(context.Background(), st))

	found, _ := st.Get(state.KeyInvoiceFound)
	assert.Equal(t, true, found)
	assert.Equal(t, "Invoice INV-2024-001 from Acme Corp: 1250.50 EUR, status open, due 2024-07-01",
		st.GetString(state.KeyInvoiceDetails))
}

// TestInvoiceLookup_NotFound tests that a missing invoice is not a stage
// failure
func TestInvoiceLookup_NotFound(t *testing.T) {
	repo := invoicedb.NewMemoryRepository(zap.NewNop())
	st := state.NewStore()
	st.Set(state.KeyInvoiceNumber, "INV-0000-000")

	lookup := NewInvoiceLookup(repo, zap.NewNop())
	require.NoError(t, lookup.Run(context.Background(), st))

	found, _ := st.Get(state.KeyInvoiceFound)
	assert.Equal(t, false, found)
	assert.False(t, st.Has(state.KeyInvoiceDetails))
}

// TestInvoiceLookup_NoNumber tests that the stage is a no-op without an
// extracted number
func TestInvoiceLookup_NoNumber(t *testing.T) {
	repo := invoicedb.NewMemoryRepository(zap.NewNop())

	lookup := NewInvoiceLookup(repo, zap.NewNop())
	st := state.NewStore()
	require.NoError(t, lookup.Run(context.Background(), st))

	assert.False(t, st.Has(state.KeyInvoiceFound))
}

// TestResponder tests auto-response drafting
func TestResponder(t *testing.T) {
	llm := &fakeLLM{response: "Thank you, we received your invoice.\n"}
	st := state.NewStore()
	st.Set(state.KeySenderEmail, "billing@acme.test")
	st.Set(state.KeyEmailCategory, core.CategoryInvoice)
	st.Set(state.KeyEmailSummary, "Payment request.")
	st.Set(state.KeyInvoiceDetails, "Invoice INV-2024-001 from Acme Corp: 1250.50 EUR, status open")

	responder := NewResponder(llm, suppress.NewChecker(nil, zap.NewNop()), zap.NewNop())
	require.NoError(t, responder.Run(context.Background(), st))

	assert.Equal(t, "Thank you, we received your invoice.", st.GetString(state.KeyAutoResponse))
	assert.Contains(t, llm.lastPrompt, "Invoice INV-2024-001")
	assert.False(t, st.Has(state.KeyAutoResponseSkipped))
}

// TestResponder_SuppressedSender tests that suppressed senders get no reply
func TestResponder_SuppressedSender(t *testing.T) {
	llm := &fakeLLM{response: "should not be used"}
	st := state.NewStore()
	st.Set(state.KeySenderEmail, "no-reply@acme.test")

	responder := NewResponder(llm, suppress.NewChecker(nil, zap.NewNop()), zap.NewNop())
	require.NoError(t, responder.Run(context.Background(), st))

	skipped, _ := st.Get(state.KeyAutoResponseSkipped)
	assert.Equal(t, true, skipped)
	assert.False(t, st.Has(state.KeyAutoResponse))
	assert.Empty(t, llm.lastPrompt)
}
