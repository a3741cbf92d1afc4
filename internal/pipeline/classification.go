package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/docproc-labs/docproc/internal/document"
	"github.com/docproc-labs/docproc/internal/inference"
	"github.com/docproc-labs/docproc/internal/store/postgres"
)

const classificationErrorPrefix = "Classification Error"

// classificationPromptLimit caps how much extracted text goes into the
// classification prompt. Category decisions don't need the whole document,
// and the cap keeps prompt cost flat regardless of document size.
const classificationPromptLimit = 2000

const classificationMaxTokens = 100

const classificationPrompt = `Please classify the following document text into one of these categories:
- Invoice
- Receipt
- Contract
- Letter
- Report
- Form
- Other

Document text:
%s

Respond with only the category name and a confidence score (0-100). Format: "Category: [category], Confidence: [score]"`

var errNoExtractedText = errors.New("no extracted text available")

// truncateOnRune caps s at limit bytes without splitting a multibyte rune, so
// a truncated prompt is always valid UTF-8.
func truncateOnRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// ClassificationExecutor runs the category decision stage over the extracted
// text.
type ClassificationExecutor struct {
	store   Store
	gen     inference.Generator
	timeout time.Duration
	logger  *slog.Logger
}

func NewClassificationExecutor(s Store, gen inference.Generator, timeout time.Duration, logger *slog.Logger) *ClassificationExecutor {
	return &ClassificationExecutor{store: s, gen: gen, timeout: timeout, logger: logger}
}

func (e *ClassificationExecutor) Step() document.Step { return document.StepClassification }

func (e *ClassificationExecutor) Run(ctx context.Context, documentID string) (StageOutcome, error) {
	rec, err := loadForStage(ctx, e.store, documentID, document.StepClassification)
	if err != nil {
		return StageOutcome{}, err
	}

	if rec.ExtractionResult == nil || rec.ExtractionResult.Text == "" {
		failDocument(ctx, e.store, e.logger, documentID, classificationErrorPrefix, errNoExtractedText)
		return StageOutcome{}, fmt.Errorf("document %s: %w", documentID, errNoExtractedText)
	}

	text := truncateOnRune(rec.ExtractionResult.Text, classificationPromptLimit)
	prompt := fmt.Sprintf(classificationPrompt, text)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	response, err := e.gen.Generate(callCtx, prompt, classificationMaxTokens)
	if err != nil {
		failDocument(ctx, e.store, e.logger, documentID, classificationErrorPrefix, err)
		return StageOutcome{}, fmt.Errorf("classification call: %w", err)
	}

	category, confidence, degraded := ParseClassification(response)
	if degraded {
		e.logger.Warn("classification response did not fully match expected format, using defaults",
			slog.String("document_id", documentID))
	}

	result := &document.ClassificationResult{
		Category:   category,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	}

	expect := document.StepClassification
	next := expect.Next()
	err = commitResult(ctx, e.store, postgres.UpdateDocumentParams{
		DocumentID:           documentID,
		ClassificationResult: result,
		CurrentStep:          &next,
		ExpectStep:           &expect,
	})
	if err != nil {
		return StageOutcome{}, err
	}

	e.logger.Info("classification completed",
		slog.String("document_id", documentID),
		slog.String("category", category),
		slog.Int("confidence", confidence))

	return StageOutcome{DocumentID: documentID, NextStep: next, Result: result}, nil
}
