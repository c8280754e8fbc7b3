package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/state"
	"github.com/mikey/llm-email-pipeline/internal/utils"
)

const classifierSystem = "You are an email classification system. Respond only with JSON."

const classifierPrompt = `Classify the following email into exactly one category:
invoice, support, complaint, newsletter, other.

Respond with a JSON object containing:
- category: string (one of the categories above)
- confidence: number between 0 and 1
- reason: string (brief explanation)

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// Classifier assigns a category to the parsed email
type Classifier struct {
	llm         core.LLMClient
	text        *utils.TextProcessor
	maxBodySize int
	logger      *zap.Logger
}

// NewClassifier creates the classification stage
func NewClassifier(llm core.LLMClient, text *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *Classifier {
	return &Classifier{
		llm:         llm,
		text:        text,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name identifies the stage in logs
func (a *Classifier) Name() string {
	return "classifier"
}

// Run classifies the email and stores the category and confidence
func (a *Classifier) Run(ctx context.Context, st *state.Store) error {
	body := a.text.ProcessText(st.GetString(state.KeyEmailBody), a.maxBodySize)
	prompt := fmt.Sprintf(classifierPrompt,
		st.GetString(state.KeySenderEmail),
		st.GetString(state.KeyEmailSubject),
		body)

	responseText, err := a.llm.Complete(ctx, classifierSystem, prompt)
	if err != nil {
		return fmt.Errorf("classification request failed: %w", err)
	}

	var classification core.Classification
	if err := json.Unmarshal([]byte(responseText), &classification); err != nil {
		jsonStr, extractErr := utils.ExtractJSON(responseText)
		if extractErr != nil {
			return fmt.Errorf("failed to parse classification response: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonStr), &classification); err != nil {
			return fmt.Errorf("failed to parse classification response: %w", err)
		}
	}

	if !validCategory(classification.Category) {
		a.logger.Warn("Classifier returned unknown category, using fallback",
			zap.String("category", classification.Category))
		classification.Category = core.CategoryOther
	}

	st.Set(state.KeyEmailCategory, classification.Category)
	st.Set(state.KeyCategoryConfidence, classification.Confidence)

	a.logger.Info("Email classified",
		zap.String("category", classification.Category),
		zap.Float64("confidence", classification.Confidence))

	return nil
}

// validCategory reports whether the classifier output is one of the known
// categories
func validCategory(category string) bool {
	switch category {
	case core.CategoryInvoice, core.CategorySupport, core.CategoryComplaint,
		core.CategoryNewsletter, core.CategoryOther:
		return true
	}
	return false
}
