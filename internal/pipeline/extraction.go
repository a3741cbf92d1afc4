package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docproc-labs/docproc/internal/document"
	"github.com/docproc-labs/docproc/internal/inference"
	"github.com/docproc-labs/docproc/internal/store/postgres"
)

const extractionErrorPrefix = "Extraction Error"

// ExtractionExecutor runs the OCR stage: it loads the raw document bytes
// from object storage, detects line-level text, and commits the joined text
// with its mean confidence.
type ExtractionExecutor struct {
	store   Store
	objects ObjectStore
	ocr     inference.LineExtractor
	timeout time.Duration
	logger  *slog.Logger
}

func NewExtractionExecutor(s Store, objects ObjectStore, ocr inference.LineExtractor, timeout time.Duration, logger *slog.Logger) *ExtractionExecutor {
	return &ExtractionExecutor{store: s, objects: objects, ocr: ocr, timeout: timeout, logger: logger}
}

func (e *ExtractionExecutor) Step() document.Step { return document.StepExtraction }

func (e *ExtractionExecutor) Run(ctx context.Context, documentID string) (StageOutcome, error) {
	rec, err := loadForStage(ctx, e.store, documentID, document.StepExtraction)
	if err != nil {
		return StageOutcome{}, err
	}

	raw, err := e.readSource(ctx, rec.SourceLocation)
	if err != nil {
		failDocument(ctx, e.store, e.logger, documentID, extractionErrorPrefix, err)
		return StageOutcome{}, fmt.Errorf("read source %s: %w", rec.SourceLocation, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	lines, err := e.ocr.ExtractLines(callCtx, raw)
	if err != nil {
		failDocument(ctx, e.store, e.logger, documentID, extractionErrorPrefix, err)
		return StageOutcome{}, fmt.Errorf("extract lines: %w", err)
	}

	text, confidence := JoinLines(lines)
	result := &document.ExtractionResult{
		Text:       text,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	}

	expect := document.StepExtraction
	next := expect.Next()
	err = commitResult(ctx, e.store, postgres.UpdateDocumentParams{
		DocumentID:       documentID,
		ExtractionResult: result,
		CurrentStep:      &next,
		ExpectStep:       &expect,
	})
	if err != nil {
		return StageOutcome{}, err
	}

	e.logger.Info("extraction completed",
		slog.String("document_id", documentID),
		slog.Int("lines", len(lines)),
		slog.Float64("confidence", confidence))

	return StageOutcome{DocumentID: documentID, NextStep: next, Result: result}, nil
}

func (e *ExtractionExecutor) readSource(ctx context.Context, sourceLocation string) ([]byte, error) {
	rc, err := e.objects.DownloadFile(ctx, sourceLocation)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
