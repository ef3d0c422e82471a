// Package chi serves the HTTP API over the ingestion and retrieval use cases.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	healthuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/health"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	ingest        Ingester
	retrieval     ContextAssembler
	documents     Documents
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest Ingester,
	retrieval ContextAssembler,
	documents Documents,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:    ingest,
		retrieval: retrieval,
		documents: documents,
		health:    health,
		logger:    logger,
	}
	// Order matters: specific causes before the kind they are wrapped in.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrBlobNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrExtraction, http.StatusUnprocessableEntity, ErrorCodeExtractionFailed),
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway, ErrorCodeEmbeddingFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusConflict, ErrorCodeVectorDimMismatch),
		sentinelHandler(domain.ErrStore, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeTimeout),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/documents", func(r chi.Router) {
		r.Post("/", s.IngestDocument)
		r.Get("/{key}", s.GetDocument)
		r.Delete("/{key}", s.DeleteDocument)
		r.Post("/{key}/context", s.AssembleContext)
	})
}

// IngestDocument handles POST /api/v1/documents.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DocumentKey) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "document_key is required")
		return
	}

	res, err := s.ingest.Ingest(r.Context(), req.DocumentKey)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, IngestResponse{
		DocumentKey: res.DocumentKey,
		Collection:  res.Collection,
		ChunkCount:  res.ChunkCount,
		Preview:     res.Preview,
	})
}

// AssembleContext handles POST /api/v1/documents/{key}/context.
func (s *Server) AssembleContext(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	var req ContextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query is required")
		return
	}

	res, err := s.retrieval.Context(r.Context(), req.Query, key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ContextResponse{Context: res.Context, Stage: res.Stage.String()})
}

// GetDocument handles GET /api/v1/documents/{key}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	info, err := s.documents.Get(r.Context(), key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{
		DocumentKey: info.DocumentKey,
		Collection:  info.Collection,
		VectorDim:   info.VectorDim,
		VectorCount: info.VectorCount,
		CreatedAt:   info.CreatedAt.UnixMilli(),
	})
}

// DeleteDocument handles DELETE /api/v1/documents/{key}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	if err := s.documents.Delete(r.Context(), key); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// documentKey reads the path-escaped {key} parameter. Keys containing "/"
// must be sent as %2F.
func documentKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || strings.TrimSpace(key) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid document key")
		return "", false
	}
	return key, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrBlobNotFound,
		domain.ErrEmptyDocument,
		domain.ErrNotFound,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrProviderUnavailable,
		domain.ErrExtraction,
		domain.ErrEmbedding,
		domain.ErrStore,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
