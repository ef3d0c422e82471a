package chatpdf

import "context"

// Embedder converts text to a vector embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is optionally implemented by an Embedder.
// When present, Health reports the provider's availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BlobFetcher returns the raw bytes of a stored source document.
type BlobFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}
