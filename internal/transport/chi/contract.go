package chi

import (
	"context"

	documentuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/document"
	healthuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/health"
	ingestuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/ingest"
	retrievaluc "github.com/Mikedodunnit/Chatpdf/internal/usecase/retrieval"
)

// Ingester runs the ingestion pipeline for one document.
type Ingester interface {
	Ingest(ctx context.Context, documentKey string) (ingestuc.Result, error)
}

// ContextAssembler builds the retrieval context for a chat turn.
type ContextAssembler interface {
	Context(ctx context.Context, query, documentKey string) (retrievaluc.Result, error)
}

// Documents reads and removes ingested documents.
type Documents interface {
	Get(ctx context.Context, documentKey string) (documentuc.Info, error)
	Delete(ctx context.Context, documentKey string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
