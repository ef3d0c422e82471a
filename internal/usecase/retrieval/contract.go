package retrieval

import (
	"context"

	"github.com/Mikedodunnit/Chatpdf/internal/domain/vector"
)

// Embedder returns a validated vector for the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the read side of the gateway.
type VectorStore interface {
	CollectionNameFor(documentKey string) string
	Query(ctx context.Context, name string, values []float32, k int) ([]vector.Match, error)
	ListAll(ctx context.Context, name string) ([]vector.Match, error)
}
