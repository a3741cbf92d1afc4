package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/docproc-labs/docproc/internal/document"
)

// ErrStaleStep is returned by UpdateDocument when an ExpectStep guard was
// given and the record's current_step no longer matches it. The write is not
// applied, which is what keeps a duplicate stage trigger from overwriting an
// already-committed result.
var ErrStaleStep = errors.New("document step already advanced")

const documentColumns = `document_id, file_name, upload_time, source_location, status, current_step,
	extraction_result, classification_result, summarization_result, errors`

// CreateDocumentParams holds the fields set once at ingestion time.
type CreateDocumentParams struct {
	DocumentID     string
	FileName       string
	UploadTime     string
	SourceLocation string
}

// CreateDocument inserts the initial record for a newly uploaded document
// (status=uploaded, current_step=extraction).
func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO documents (document_id, file_name, upload_time, source_location, status, current_step, errors)
		 VALUES ($1, $2, $3, $4, $5, $6, '{}')`,
		arg.DocumentID, arg.FileName, arg.UploadTime, arg.SourceLocation,
		document.StatusUploaded, document.StepExtraction)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetDocument returns the record for a single document, or pgx.ErrNoRows.
func (q *Queries) GetDocument(ctx context.Context, documentID string) (document.Record, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE document_id = $1`, documentID)
	return scanDocument(row)
}

// ListDocuments returns all records, newest uploads first.
func (q *Queries) ListDocuments(ctx context.Context) ([]document.Record, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY upload_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var items []document.Record
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

// UpdateDocumentParams is a field-scoped partial update. Only non-nil fields
// are written; AppendErrors entries are appended to the existing errors array,
// never replacing it. When ExpectStep is set the update only applies while
// current_step still equals it (compare-and-set), making a result write plus
// step advance one atomic statement.
type UpdateDocumentParams struct {
	DocumentID string

	Status               *document.Status
	CurrentStep          *document.Step
	ExtractionResult     *document.ExtractionResult
	ClassificationResult *document.ClassificationResult
	SummarizationResult  *document.SummarizationResult
	AppendErrors         []string

	ExpectStep *document.Step
}

// UpdateDocument applies a partial update. Returns pgx.ErrNoRows if the
// document does not exist, or ErrStaleStep if the ExpectStep guard failed.
func (q *Queries) UpdateDocument(ctx context.Context, arg UpdateDocumentParams) error {
	set := make([]string, 0, 6)
	args := []any{arg.DocumentID}
	add := func(column string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if arg.Status != nil {
		add("status", *arg.Status)
	}
	if arg.CurrentStep != nil {
		add("current_step", *arg.CurrentStep)
	}
	if arg.ExtractionResult != nil {
		add("extraction_result", arg.ExtractionResult)
	}
	if arg.ClassificationResult != nil {
		add("classification_result", arg.ClassificationResult)
	}
	if arg.SummarizationResult != nil {
		add("summarization_result", arg.SummarizationResult)
	}
	if len(arg.AppendErrors) > 0 {
		args = append(args, arg.AppendErrors)
		set = append(set, fmt.Sprintf("errors = array_cat(COALESCE(errors, '{}'), $%d)", len(args)))
	}
	if len(set) == 0 {
		return nil
	}

	sql := "UPDATE documents SET " + strings.Join(set, ", ") + " WHERE document_id = $1"
	if arg.ExpectStep != nil {
		args = append(args, *arg.ExpectStep)
		sql += fmt.Sprintf(" AND current_step = $%d", len(args))
	}

	tag, err := q.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if arg.ExpectStep != nil {
			// Distinguish a missing record from a failed step guard.
			if _, gerr := q.GetDocument(ctx, arg.DocumentID); gerr == nil {
				return ErrStaleStep
			} else if !errors.Is(gerr, pgx.ErrNoRows) {
				return gerr
			}
		}
		return pgx.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (document.Record, error) {
	var rec document.Record
	err := row.Scan(
		&rec.DocumentID, &rec.FileName, &rec.UploadTime, &rec.SourceLocation,
		&rec.Status, &rec.CurrentStep,
		&rec.ExtractionResult, &rec.ClassificationResult, &rec.SummarizationResult,
		&rec.Errors,
	)
	if err != nil {
		return document.Record{}, err
	}
	return rec, nil
}
