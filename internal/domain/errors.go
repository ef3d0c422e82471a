package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures crossing component boundaries.
type ErrorKind string

// Error kinds surfaced by ingestion and retrieval.
const (
	KindExtraction ErrorKind = "extraction"
	KindEmbedding  ErrorKind = "embedding"
	KindStore      ErrorKind = "store"
)

var (
	// ErrExtraction signals that no usable text could be obtained from a document.
	ErrExtraction = errors.New("extraction error")
	// ErrEmbedding signals an embedding provider failure or malformed vector.
	ErrEmbedding = errors.New("embedding error")
	// ErrStore signals a vector store failure.
	ErrStore = errors.New("store error")

	// ErrBlobNotFound signals a missing source document in the blob store.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrEmptyDocument signals a document with no extractable text.
	ErrEmptyDocument = errors.New("no text found in document")
	// ErrNotFound signals a missing collection.
	ErrNotFound = errors.New("not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRateLimited signals a rate limit hit at the embedding provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrProviderUnavailable signals a 5xx or empty reply from the embedding provider.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrInvalidInput signals a malformed request.
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries an error kind and the failing operation through the pipeline.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinel so callers can use errors.Is(err, ErrEmbedding).
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindExtraction:
		return target == ErrExtraction
	case KindEmbedding:
		return target == ErrEmbedding
	case KindStore:
		return target == ErrStore
	}
	return false
}

// NewExtractionError wraps err as an extraction failure.
func NewExtractionError(op string, err error) error {
	return &Error{Kind: KindExtraction, Op: op, Err: err}
}

// NewEmbeddingError wraps err as an embedding failure.
func NewEmbeddingError(op string, err error) error {
	return &Error{Kind: KindEmbedding, Op: op, Err: err}
}

// NewStoreError wraps err as a vector store failure.
func NewStoreError(op string, err error) error {
	return &Error{Kind: KindStore, Op: op, Err: err}
}

// KindOf returns the kind of the first domain.Error in the chain, or "".
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
