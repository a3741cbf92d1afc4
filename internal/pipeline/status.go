package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/docproc-labs/docproc/internal/document"
)

// StatusReader resolves the current record state for polling clients. It is
// strictly read-only; between successive reads a record only ever gains
// fields and forward progress.
type StatusReader struct {
	store Store
}

func NewStatusReader(s Store) *StatusReader {
	return &StatusReader{store: s}
}

// GetOne returns a single document record, or ErrRecordNotFound.
func (r *StatusReader) GetOne(ctx context.Context, documentID string) (document.Record, error) {
	rec, err := r.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Record{}, fmt.Errorf("document %s: %w", documentID, ErrRecordNotFound)
		}
		return document.Record{}, fmt.Errorf("get document %s: %w", documentID, err)
	}
	return rec, nil
}

// GetAll returns every document record, newest uploads first.
func (r *StatusReader) GetAll(ctx context.Context) ([]document.Record, error) {
	return r.store.ListDocuments(ctx)
}
