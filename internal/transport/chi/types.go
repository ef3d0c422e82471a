package chi

// ErrorCode is the machine-readable error category in an ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeDocumentNotFound  ErrorCode = "document_not_found"
	ErrorCodeExtractionFailed  ErrorCode = "extraction_failed"
	ErrorCodeEmbeddingFailed   ErrorCode = "embedding_provider_error"
	ErrorCodeStoreUnavailable  ErrorCode = "store_unavailable"
	ErrorCodeVectorDimMismatch ErrorCode = "vector_dim_mismatch"
	ErrorCodeTimeout           ErrorCode = "timeout"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// IngestRequest is the body of POST /api/v1/documents.
type IngestRequest struct {
	DocumentKey string `json:"document_key"`
}

// IngestResponse describes a freshly ingested document.
type IngestResponse struct {
	DocumentKey string `json:"document_key"`
	Collection  string `json:"collection"`
	ChunkCount  int    `json:"chunk_count"`
	Preview     string `json:"preview"`
}

// ContextRequest is the body of POST /api/v1/documents/{key}/context.
type ContextRequest struct {
	Query string `json:"query"`
}

// ContextResponse carries the assembled context and the stage that served it.
type ContextResponse struct {
	Context string `json:"context"`
	Stage   string `json:"stage"`
}

// DocumentResponse describes the stored state of a document.
type DocumentResponse struct {
	DocumentKey string `json:"document_key"`
	Collection  string `json:"collection"`
	VectorDim   int    `json:"vector_dim"`
	VectorCount int    `json:"vector_count"`
	CreatedAt   int64  `json:"created_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
