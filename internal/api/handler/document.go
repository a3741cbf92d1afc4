package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docproc-labs/docproc/internal/document"
	"github.com/docproc-labs/docproc/internal/pipeline"
	"github.com/docproc-labs/docproc/internal/store"
	minioclient "github.com/docproc-labs/docproc/internal/store/minio"
	"github.com/docproc-labs/docproc/internal/store/postgres"
	"github.com/docproc-labs/docproc/pkg/apierr"
)

// DocumentHandler serves the upload and status endpoints. The status side
// serializes records verbatim: optional result fields are omitted until their
// stage commits, and between polls a record only ever gains fields.
type DocumentHandler struct {
	logger   *slog.Logger
	store    *store.Store
	reader   *pipeline.StatusReader
	objects  *minioclient.Client
	producer *pipeline.Producer
	maxBytes int64
}

func NewDocumentHandler(logger *slog.Logger, s *store.Store, reader *pipeline.StatusReader, objects *minioclient.Client, producer *pipeline.Producer, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{
		logger:   logger,
		store:    s,
		reader:   reader,
		objects:  objects,
		producer: producer,
		maxBytes: maxBytes,
	}
}

type uploadRequest struct {
	FileName    string `json:"fileName"`
	FileContent string `json:"fileContent"` // base64-encoded document bytes
	ContentType string `json:"contentType"`
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	if req.FileName == "" {
		writeAPIError(w, h.logger, apierr.FileNameRequired())
		return
	}
	if req.FileContent == "" {
		writeAPIError(w, h.logger, apierr.FileContentRequired())
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.FileContent)
	if err != nil {
		writeAPIError(w, h.logger, apierr.FileContentInvalid())
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	documentID := uuid.New().String()
	objectName := fmt.Sprintf("documents/%s/%s", documentID, req.FileName)
	uploadTime := time.Now().UTC().Format(time.RFC3339)

	if err := h.objects.UploadFile(r.Context(), objectName, bytes.NewReader(raw), int64(len(raw)), contentType); err != nil {
		writeAPIError(w, h.logger, apierr.UploadFailed(err))
		return
	}

	// The record must exist with status=uploaded before the trigger fires,
	// so a worker picking the message up immediately still finds it.
	err = h.store.CreateDocument(r.Context(), postgres.CreateDocumentParams{
		DocumentID:     documentID,
		FileName:       req.FileName,
		UploadTime:     uploadTime,
		SourceLocation: objectName,
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.DocumentCreateFailed(err))
		return
	}

	if h.producer != nil {
		h.enqueue(r.Context(), documentID)
	}

	h.logger.Info("document uploaded",
		slog.String("document_id", documentID),
		slog.String("file_name", req.FileName),
		slog.Int("bytes", len(raw)))

	writeJSON(w, http.StatusOK, map[string]string{
		"documentId": documentID,
		"message":    "Document uploaded successfully and processing started",
	})
}

func (h *DocumentHandler) enqueue(ctx context.Context, documentID string) {
	msg := pipeline.ProcessMessage{DocumentID: documentID, Trigger: "upload"}
	if _, err := h.producer.Enqueue(ctx, msg); err != nil {
		h.logger.Error("enqueue processing", slog.String("error", err.Error()),
			slog.String("document_id", documentID))
	}
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	rec, err := h.reader.GetOne(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, pipeline.ErrRecordNotFound) {
			writeAPIError(w, h.logger, apierr.DocumentNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.reader.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, h.logger, apierr.DocumentListFailed(err))
		return
	}
	if recs == nil {
		recs = []document.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": recs,
	})
}
