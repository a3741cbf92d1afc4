package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/docproc-labs/docproc/internal/document"
	"github.com/docproc-labs/docproc/internal/store/postgres"
)

// Coordinator invokes the stage executors in their fixed order, resuming
// from whatever step the record currently indicates. It holds no state of
// its own: each executor's success advances the record, and the nextStep
// hint from one outcome is the trigger for the following stage.
//
// On executor failure the coordinator does not retry or advance — the record
// is already marked failed with its currentStep intact, and the error is
// surfaced to the caller (the queue consumer) so re-triggering stays an
// external decision.
type Coordinator struct {
	store     Store
	executors []Executor
	logger    *slog.Logger
}

// NewCoordinator expects executors in pipeline order.
func NewCoordinator(s Store, executors []Executor, logger *slog.Logger) *Coordinator {
	return &Coordinator{store: s, executors: executors, logger: logger}
}

// Process runs the pipeline for one document from its current step to
// completion or first failure.
func (c *Coordinator) Process(ctx context.Context, documentID string) error {
	rec, err := c.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("document %s: %w", documentID, ErrRecordNotFound)
		}
		return fmt.Errorf("load document %s: %w", documentID, err)
	}

	if rec.CurrentStep == document.StepCompleted {
		c.logger.Info("document already completed", slog.String("document_id", documentID))
		return nil
	}

	c.logger.Info("pipeline started",
		slog.String("document_id", documentID),
		slog.String("current_step", string(rec.CurrentStep)))

	processing := document.StatusProcessing
	if err := c.store.UpdateDocument(ctx, postgres.UpdateDocumentParams{
		DocumentID: documentID,
		Status:     &processing,
	}); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	step := rec.CurrentStep
	for _, ex := range c.executors {
		if ex.Step() != step {
			// Stage already committed on an earlier run; its result is durable.
			continue
		}

		c.logger.Info("stage started",
			slog.String("stage", string(ex.Step())),
			slog.String("document_id", documentID))

		outcome, err := ex.Run(ctx, documentID)
		if err != nil {
			return fmt.Errorf("stage %s: %w", ex.Step(), err)
		}

		c.logger.Info("stage completed",
			slog.String("stage", string(ex.Step())),
			slog.String("document_id", documentID),
			slog.String("next_step", string(outcome.NextStep)))

		step = outcome.NextStep
	}

	c.logger.Info("pipeline completed", slog.String("document_id", documentID))
	return nil
}
