package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docproc-labs/docproc/internal/document"
	"github.com/docproc-labs/docproc/internal/inference"
)

func newTestCoordinator(s Store, ocr inference.LineExtractor, classify, summarize inference.Generator) *Coordinator {
	executors := []Executor{
		NewExtractionExecutor(s, &fakeObjects{data: []byte("raw")}, ocr, time.Minute, testLogger()),
		NewClassificationExecutor(s, classify, time.Minute, testLogger()),
		NewSummarizationExecutor(s, summarize, time.Minute, testLogger()),
	}
	return NewCoordinator(s, executors, testLogger())
}

// stagedGenerator returns different canned responses for the classification
// and summarization prompts, keyed on the prompt prefix.
type stagedGenerator struct {
	classification string
	summarization  string
}

func (g *stagedGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	if containsSubstring(prompt, "classify") {
		return g.classification, nil
	}
	return g.summarization, nil
}

func (g *stagedGenerator) ModelID() string { return "staged-fake" }

func TestCoordinator_FullPipeline(t *testing.T) {
	s := newFakeStore(newUploadedRecord("doc-1"))
	ocr := &fakeExtractor{lines: []inference.Line{
		{Text: "Invoice #1", Confidence: conf(90)},
		{Text: "Total $9.00", Confidence: conf(80)},
	}}
	gen := &stagedGenerator{
		classification: "Category: Invoice, Confidence: 95",
		summarization:  "Summary: A short note.\nKey Points:\n- point one\n- point two",
	}

	coord := newTestCoordinator(s, ocr, gen, gen)
	if err := coord.Process(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, _ := s.GetDocument(context.Background(), "doc-1")
	if rec.Status != document.StatusCompleted {
		t.Errorf("expected status completed, got %s", rec.Status)
	}
	if rec.CurrentStep != document.StepCompleted {
		t.Errorf("expected currentStep completed, got %s", rec.CurrentStep)
	}
	if rec.ExtractionResult == nil || rec.ClassificationResult == nil || rec.SummarizationResult == nil {
		t.Fatal("expected all three stage results to be present")
	}
	if len(rec.Errors) != 0 {
		t.Errorf("expected no errors, got %v", rec.Errors)
	}

	// Stage timestamps commit in pipeline order.
	if rec.ClassificationResult.Timestamp.Before(rec.ExtractionResult.Timestamp) {
		t.Error("classification committed before extraction")
	}
	if rec.SummarizationResult.Timestamp.Before(rec.ClassificationResult.Timestamp) {
		t.Error("summarization committed before classification")
	}
}

func TestCoordinator_HaltsOnStageFailure(t *testing.T) {
	s := newFakeStore(newUploadedRecord("doc-1"))
	ocr := &fakeExtractor{err: errors.New("boom")}
	gen := &stagedGenerator{classification: "Category: Invoice, Confidence: 95"}

	coord := newTestCoordinator(s, ocr, gen, gen)
	err := coord.Process(context.Background(), "doc-1")
	if err == nil {
		t.Fatal("expected pipeline failure")
	}

	rec, _ := s.GetDocument(context.Background(), "doc-1")
	if rec.Status != document.StatusFailed {
		t.Errorf("expected status failed, got %s", rec.Status)
	}
	if rec.CurrentStep != document.StepExtraction {
		t.Errorf("expected currentStep to stay at extraction, got %s", rec.CurrentStep)
	}
	if rec.ClassificationResult != nil || rec.SummarizationResult != nil {
		t.Error("expected no downstream results after a failed stage")
	}
}

func TestCoordinator_ResumesFromCurrentStep(t *testing.T) {
	rec := newUploadedRecord("doc-1")
	rec.Status = document.StatusProcessing
	rec.CurrentStep = document.StepClassification
	rec.ExtractionResult = &document.ExtractionResult{Text: "already extracted", Confidence: 77, Timestamp: time.Now().UTC()}
	s := newFakeStore(rec)

	// The extractor must never be reached when resuming past extraction.
	ocr := &fakeExtractor{err: errors.New("must not be called")}
	gen := &stagedGenerator{
		classification: "Category: Letter, Confidence: 60",
		summarization:  "Summary: resumed.\nKey Points:\n- done",
	}

	coord := newTestCoordinator(s, ocr, gen, gen)
	if err := coord.Process(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.GetDocument(context.Background(), "doc-1")
	if got.Status != document.StatusCompleted {
		t.Errorf("expected status completed, got %s", got.Status)
	}
	if got.ExtractionResult.Text != "already extracted" {
		t.Error("expected the committed extraction result to survive the resume")
	}
}

func TestCoordinator_AlreadyCompleted(t *testing.T) {
	rec := newUploadedRecord("doc-1")
	rec.Status = document.StatusCompleted
	rec.CurrentStep = document.StepCompleted
	s := newFakeStore(rec)

	coord := newTestCoordinator(s, &fakeExtractor{err: errors.New("must not run")}, &stagedGenerator{}, &stagedGenerator{})
	if err := coord.Process(context.Background(), "doc-1"); err != nil {
		t.Fatalf("expected completed document to be a no-op, got %v", err)
	}

	got, _ := s.GetDocument(context.Background(), "doc-1")
	if got.Status != document.StatusCompleted {
		t.Errorf("expected status to remain completed, got %s", got.Status)
	}
}

func TestCoordinator_MissingDocument(t *testing.T) {
	s := newFakeStore()
	coord := newTestCoordinator(s, &fakeExtractor{}, &stagedGenerator{}, &stagedGenerator{})

	err := coord.Process(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestStatusReader_GetOne_NotFound(t *testing.T) {
	reader := NewStatusReader(newFakeStore())

	_, err := reader.GetOne(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestErrorsOnlyGrow(t *testing.T) {
	s := newFakeStore(newUploadedRecord("doc-1"))
	ocr := &fakeExtractor{err: errors.New("first failure")}
	ex := NewExtractionExecutor(s, &fakeObjects{data: []byte("raw")}, ocr, time.Minute, testLogger())

	_, _ = ex.Run(context.Background(), "doc-1")
	ocr.err = errors.New("second failure")
	_, _ = ex.Run(context.Background(), "doc-1")

	rec, _ := s.GetDocument(context.Background(), "doc-1")
	if len(rec.Errors) != 2 {
		t.Fatalf("expected two accumulated errors, got %v", rec.Errors)
	}
	if rec.Errors[0] != "Extraction Error: first failure" || rec.Errors[1] != "Extraction Error: second failure" {
		t.Errorf("expected errors in append order, got %v", rec.Errors)
	}
}
