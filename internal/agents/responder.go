package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/state"
	"github.com/mikey/llm-email-pipeline/internal/suppress"
)

const responderSystem = "You draft polite, concise email replies. Respond only with the reply text."

const responderPrompt = `Draft a short reply to the email described below. Acknowledge the sender's
request and, when invoice details are listed, include them in the reply.
Do not invent facts that are not listed.

Category: %s
Summary: %s
Original subject: %s
Sender: %s
%s
Respond only with the reply body and nothing else.`

// Responder drafts an auto-response for the email. Replies to no-reply
// senders and suppressed domains are skipped.
type Responder struct {
	llm     core.LLMClient
	checker *suppress.Checker
	logger  *zap.Logger
}

// NewResponder creates the auto-response stage
func NewResponder(llm core.LLMClient, checker *suppress.Checker, logger *zap.Logger) *Responder {
	return &Responder{
		llm:     llm,
		checker: checker,
		logger:  logger,
	}
}

// Name identifies the stage in logs
func (a *Responder) Name() string {
	return "auto_responder"
}

// Run drafts the reply and stores it
func (a *Responder) Run(ctx context.Context, st *state.Store) error {
	sender := st.GetString(state.KeySenderEmail)
	if a.checker.IsSuppressed(sender) {
		st.Set(state.KeyAutoResponseSkipped, true)
		a.logger.Info("Auto-response suppressed", zap.String("sender", sender))
		return nil
	}

	invoiceLine := ""
	if details := st.GetString(state.KeyInvoiceDetails); details != "" {
		invoiceLine = fmt.Sprintf("Invoice details: %s\n", details)
	}

	prompt := fmt.Sprintf(responderPrompt,
		st.GetString(state.KeyEmailCategory),
		st.GetString(state.KeyEmailSummary),
		st.GetString(state.KeyEmailSubject),
		sender,
		invoiceLine)

	responseText, err := a.llm.Complete(ctx, responderSystem, prompt)
	if err != nil {
		return fmt.Errorf("auto-response request failed: %w", err)
	}

	st.Set(state.KeyAutoResponse, strings.TrimSpace(responseText))

	a.logger.Info("Auto-response drafted", zap.String("sender", sender))

	return nil
}
