// Package document defines the per-document record persisted by the record
// store and the enums that drive the processing pipeline.
package document

import "time"

// Status is the record-level lifecycle state. It is monotonic: uploaded →
// processing → completed, with failed reachable from any in-progress state
// and terminal once set.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Step identifies the next stage to run (or the last one attempted). It only
// ever moves forward through the fixed stage order.
type Step string

const (
	StepExtraction     Step = "extraction"
	StepClassification Step = "classification"
	StepSummarization  Step = "summarization"
	StepCompleted      Step = "completed"
)

// Next returns the step that follows s in the fixed pipeline order.
// StepCompleted is its own successor.
func (s Step) Next() Step {
	switch s {
	case StepExtraction:
		return StepClassification
	case StepClassification:
		return StepSummarization
	case StepSummarization:
		return StepCompleted
	default:
		return StepCompleted
	}
}

// ExtractionResult holds the OCR output for a document. Text is the
// newline-joined line units in page order; Confidence is the arithmetic mean
// of the per-line scores (0 when no line carried one).
type ExtractionResult struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// ClassificationResult holds the parsed category decision.
type ClassificationResult struct {
	Category   string    `json:"category"`
	Confidence int       `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// SummarizationResult holds the parsed summary and its ordered key points.
type SummarizationResult struct {
	Summary   string    `json:"summary"`
	KeyPoints []string  `json:"keyPoints"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is the durable state for one document. Result fields are pointers so
// that unset stages are omitted from JSON rather than null-defaulted, and so
// the store can distinguish "not yet written" from "written empty".
//
// Records are append/update-only after creation: result fields are written
// exactly once, Errors only ever grows, and nothing is deleted by the core.
type Record struct {
	DocumentID     string `json:"documentId"`
	FileName       string `json:"fileName"`
	UploadTime     string `json:"uploadTime"`
	SourceLocation string `json:"sourceLocation"`
	Status         Status `json:"status"`
	CurrentStep    Step   `json:"currentStep"`

	ExtractionResult     *ExtractionResult     `json:"extractionResult,omitempty"`
	ClassificationResult *ClassificationResult `json:"classificationResult,omitempty"`
	SummarizationResult  *SummarizationResult  `json:"summarizationResult,omitempty"`

	Errors []string `json:"errors,omitempty"`
}
