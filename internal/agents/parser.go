// Package agents implements the stages of the email processing pipeline.
package agents

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/extractor"
	"github.com/mikey/llm-email-pipeline/internal/state"
)

// Parser is the initial stage: it extracts the email container named by the
// seed keys and populates the shared state under the fixed contract keys.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates the parser stage
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Name identifies the stage in logs
func (a *Parser) Name() string {
	return "email_parser"
}

// Run extracts the email and merges the result into the state. On failure it
// records parsing_status/parsing_message and returns the failure so the
// pipeline halts before any LLM stage runs.
func (a *Parser) Run(ctx context.Context, st *state.Store) error {
	in := extractor.Input{
		FilePath: st.GetString(state.KeyEmailFilePath),
		BytesB64: st.GetString(state.KeyEmailFileBytesB64),
	}

	parsed, err := extractor.Extract(in)
	if err != nil {
		st.Set(state.KeyParsingStatus, "error")
		st.Set(state.KeyParsingMessage, err.Error())
		return err
	}

	if parsed.Subject != nil {
		st.Set(state.KeyEmailSubject, *parsed.Subject)
	}
	if parsed.Body != nil {
		st.Set(state.KeyEmailBody, *parsed.Body)
	}
	if parsed.Sender != nil {
		st.Set(state.KeySenderEmail, *parsed.Sender)
	}
	if parsed.To != nil {
		st.Set(state.KeyRecipientEmail, *parsed.To)
	}
	if parsed.Date != nil {
		st.Set(state.KeyEmailDate, *parsed.Date)
	}
	st.Set(state.KeyEmailAttachments, parsed.Attachments)

	a.logger.Info("Email parsed",
		zap.Bool("has_subject", parsed.Subject != nil),
		zap.Bool("has_body", parsed.Body != nil),
		zap.Int("attachments", len(parsed.Attachments)))

	return nil
}
