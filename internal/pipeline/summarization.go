package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docproc-labs/docproc/internal/document"
	"github.com/docproc-labs/docproc/internal/inference"
	"github.com/docproc-labs/docproc/internal/store/postgres"
)

const summarizationErrorPrefix = "Summarization Error"

const summarizationMaxTokens = 500

// fallbackCategory is used in the summarization prompt when classification
// produced no category. A missing category never blocks summarization.
const fallbackCategory = "Unknown"

const summarizationPrompt = `Please provide a concise summary of this %s document and extract key points.

Document text:
%s

Please provide:
1. A brief summary (2-3 sentences)
2. Key points (3-5 bullet points)

Format your response as:
Summary: [your summary]
Key Points:
- [point 1]
- [point 2]
- [point 3]`

// SummarizationExecutor runs the final stage: summarizing the full extracted
// text in the context of its category. Committing the result also marks the
// record completed.
type SummarizationExecutor struct {
	store   Store
	gen     inference.Generator
	timeout time.Duration
	logger  *slog.Logger
}

func NewSummarizationExecutor(s Store, gen inference.Generator, timeout time.Duration, logger *slog.Logger) *SummarizationExecutor {
	return &SummarizationExecutor{store: s, gen: gen, timeout: timeout, logger: logger}
}

func (e *SummarizationExecutor) Step() document.Step { return document.StepSummarization }

func (e *SummarizationExecutor) Run(ctx context.Context, documentID string) (StageOutcome, error) {
	rec, err := loadForStage(ctx, e.store, documentID, document.StepSummarization)
	if err != nil {
		return StageOutcome{}, err
	}

	if rec.ExtractionResult == nil || rec.ExtractionResult.Text == "" {
		failDocument(ctx, e.store, e.logger, documentID, summarizationErrorPrefix, errNoExtractedText)
		return StageOutcome{}, fmt.Errorf("document %s: %w", documentID, errNoExtractedText)
	}

	category := fallbackCategory
	if rec.ClassificationResult != nil && rec.ClassificationResult.Category != "" {
		category = rec.ClassificationResult.Category
	}

	// Summarization uses the full extracted text, unlike classification.
	prompt := fmt.Sprintf(summarizationPrompt, category, rec.ExtractionResult.Text)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	response, err := e.gen.Generate(callCtx, prompt, summarizationMaxTokens)
	if err != nil {
		failDocument(ctx, e.store, e.logger, documentID, summarizationErrorPrefix, err)
		return StageOutcome{}, fmt.Errorf("summarization call: %w", err)
	}

	summary, keyPoints, degraded := ParseSummarization(response)
	if degraded {
		e.logger.Warn("summarization response did not match expected format, keeping raw text as summary",
			slog.String("document_id", documentID))
	}

	result := &document.SummarizationResult{
		Summary:   summary,
		KeyPoints: keyPoints,
		Timestamp: time.Now().UTC(),
	}

	expect := document.StepSummarization
	next := expect.Next()
	completed := document.StatusCompleted
	err = commitResult(ctx, e.store, postgres.UpdateDocumentParams{
		DocumentID:          documentID,
		SummarizationResult: result,
		Status:              &completed,
		CurrentStep:         &next,
		ExpectStep:          &expect,
	})
	if err != nil {
		return StageOutcome{}, err
	}

	e.logger.Info("summarization completed",
		slog.String("document_id", documentID),
		slog.Int("key_points", len(keyPoints)))

	return StageOutcome{DocumentID: documentID, NextStep: next, Result: result}, nil
}
