package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Document errors.
const (
	CodeDocumentNotFound     Code = "DOCUMENT_NOT_FOUND"
	CodeDocumentCreateFailed Code = "DOCUMENT_CREATE_FAILED"
	CodeDocumentListFailed   Code = "DOCUMENT_LIST_FAILED"
)

// Upload errors.
const (
	CodeFileNameRequired    Code = "FILE_NAME_REQUIRED"
	CodeFileContentRequired Code = "FILE_CONTENT_REQUIRED"
	CodeFileContentInvalid  Code = "FILE_CONTENT_INVALID"
	CodeUploadFailed        Code = "UPLOAD_FAILED"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)
