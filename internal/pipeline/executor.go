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

// loadForStage fetches the record and verifies it is at the expected step.
// Any mismatch is ErrStaleStage: either the stage already ran (duplicate
// trigger) or an upstream stage has not committed yet.
func loadForStage(ctx context.Context, s Store, documentID string, step document.Step) (document.Record, error) {
	rec, err := s.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Record{}, fmt.Errorf("document %s: %w", documentID, ErrRecordNotFound)
		}
		return document.Record{}, fmt.Errorf("load document %s: %w", documentID, err)
	}
	if rec.CurrentStep != step {
		return document.Record{}, fmt.Errorf("document %s is at step %s, not %s: %w",
			documentID, rec.CurrentStep, step, ErrStaleStage)
	}
	return rec, nil
}

// failDocument marks the record failed and appends a stage-prefixed
// diagnostic. The currentStep is left untouched so an external retry can
// re-invoke the same stage. Persistence errors are logged, never masked over
// the original stage error.
func failDocument(ctx context.Context, s Store, logger *slog.Logger, documentID, prefix string, cause error) {
	failed := document.StatusFailed
	err := s.UpdateDocument(ctx, postgres.UpdateDocumentParams{
		DocumentID:   documentID,
		Status:       &failed,
		AppendErrors: []string{fmt.Sprintf("%s: %v", prefix, cause)},
	})
	if err != nil {
		logger.Error("persist stage failure",
			slog.String("document_id", documentID),
			slog.String("error", err.Error()))
	}
}

// commitResult maps the store's step guard violation onto ErrStaleStage.
func commitResult(ctx context.Context, s Store, arg postgres.UpdateDocumentParams) error {
	if err := s.UpdateDocument(ctx, arg); err != nil {
		if errors.Is(err, postgres.ErrStaleStep) {
			return fmt.Errorf("document %s: %w", arg.DocumentID, ErrStaleStage)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("document %s: %w", arg.DocumentID, ErrRecordNotFound)
		}
		return fmt.Errorf("commit stage result: %w", err)
	}
	return nil
}
