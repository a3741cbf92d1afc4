// Package pipeline advances a document through the fixed three-stage
// processing sequence: extraction → classification → summarization. Each
// stage persists its own result before the next one may start, so the record
// is a strictly growing log of completed stages that a reader can poll at
// any time.
package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/docproc-labs/docproc/internal/document"
	"github.com/docproc-labs/docproc/internal/store/postgres"
)

var (
	// ErrRecordNotFound is returned when the referenced document does not
	// exist. No record is mutated.
	ErrRecordNotFound = errors.New("document record not found")

	// ErrStaleStage is returned when an executor is invoked for a stage the
	// record's currentStep no longer matches, e.g. a duplicate queue
	// delivery. Results are never double-written.
	ErrStaleStage = errors.New("stage no longer matches document step")
)

// Store is the record store surface the pipeline needs. *store.Store
// satisfies it; tests inject an in-memory fake.
type Store interface {
	GetDocument(ctx context.Context, documentID string) (document.Record, error)
	UpdateDocument(ctx context.Context, arg postgres.UpdateDocumentParams) error
	ListDocuments(ctx context.Context) ([]document.Record, error)
}

// ObjectStore serves the raw document bytes pointed to by sourceLocation.
type ObjectStore interface {
	DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
}

// StageOutcome is returned by a successful executor run.
type StageOutcome struct {
	DocumentID string
	NextStep   document.Step
	// Result is the stage's structured result as persisted:
	// *document.ExtractionResult, *document.ClassificationResult or
	// *document.SummarizationResult.
	Result any
}

// Executor runs one stage for one document.
type Executor interface {
	Step() document.Step
	Run(ctx context.Context, documentID string) (StageOutcome, error)
}
