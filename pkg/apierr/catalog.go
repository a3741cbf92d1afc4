package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Document ---

func DocumentNotFound() *Error {
	return New(CodeDocumentNotFound, http.StatusNotFound, "Document not found")
}

func DocumentCreateFailed(cause error) *Error {
	return Wrap(CodeDocumentCreateFailed, http.StatusInternalServerError, "Failed to create document record", cause)
}

func DocumentListFailed(cause error) *Error {
	return Wrap(CodeDocumentListFailed, http.StatusInternalServerError, "Failed to list documents", cause)
}

// --- Upload ---

func FileNameRequired() *Error {
	return New(CodeFileNameRequired, http.StatusBadRequest, "fileName is required")
}

func FileContentRequired() *Error {
	return New(CodeFileContentRequired, http.StatusBadRequest, "fileContent is required")
}

func FileContentInvalid() *Error {
	return New(CodeFileContentInvalid, http.StatusBadRequest, "fileContent must be base64-encoded")
}

func UploadFailed(cause error) *Error {
	return Wrap(CodeUploadFailed, http.StatusInternalServerError, "Failed to upload file", cause)
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}
