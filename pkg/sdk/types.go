package chatpdf

import (
	"time"

	documentuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/document"
)

// IngestResult summarizes a completed ingestion.
type IngestResult struct {
	DocumentKey string
	Collection  string
	Chunks      int
	Preview     string // first characters of the extracted text
}

// ContextResult is assembled prompt context.
type ContextResult struct {
	Text string
	// Stage names the retrieval step that produced Text, e.g. "threshold" or "placeholder".
	Stage string
}

// DocumentInfo describes an ingested document's collection.
type DocumentInfo struct {
	DocumentKey string
	Collection  string
	VectorDim   int
	VectorCount int
	CreatedAt   time.Time
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

func documentInfoFromDomain(i documentuc.Info) DocumentInfo {
	return DocumentInfo{
		DocumentKey: i.DocumentKey,
		Collection:  i.Collection,
		VectorDim:   i.VectorDim,
		VectorCount: i.VectorCount,
		CreatedAt:   i.CreatedAt,
	}
}
