package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/state"
	"github.com/mikey/llm-email-pipeline/internal/utils"
)

const summarizerSystem = "You are an email summarization system. Respond only with the summary text."

const summarizerPrompt = `Summarize the following email in at most three sentences.
Focus on what the sender wants and any deadlines or amounts mentioned.

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the summary and nothing else.`

// Summarizer produces a short summary of the parsed email
type Summarizer struct {
	llm         core.LLMClient
	text        *utils.TextProcessor
	maxBodySize int
	logger      *zap.Logger
}

// NewSummarizer creates the summarization stage
func NewSummarizer(llm core.LLMClient, text *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		llm:         llm,
		text:        text,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name identifies the stage in logs
func (a *Summarizer) Name() string {
	return "summarizer"
}

// Run summarizes the email body and stores the summary
func (a *Summarizer) Run(ctx context.Context, st *state.Store) error {
	body := a.text.ProcessText(st.GetString(state.KeyEmailBody), a.maxBodySize)
	prompt := fmt.Sprintf(summarizerPrompt,
		st.GetString(state.KeySenderEmail),
		st.GetString(state.KeyEmailSubject),
		body)

	responseText, err := a.llm.Complete(ctx, summarizerSystem, prompt)
	if err != nil {
		return fmt.Errorf("summarization request failed: %w", err)
	}

	summary := strings.TrimSpace(responseText)
	st.Set(state.KeyEmailSummary, summary)

	a.logger.Info("Email summarized", zap.Int("summary_length", len(summary)))

	return nil
}
