package ingest

import (
	"context"

	domcol "github.com/Mikedodunnit/Chatpdf/internal/domain/collection"
	"github.com/Mikedodunnit/Chatpdf/internal/domain/document"
	"github.com/Mikedodunnit/Chatpdf/internal/domain/vector"
)

// BlobFetcher downloads the raw uploaded document.
type BlobFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Extractor splits raw document bytes into ordered pages.
type Extractor interface {
	Pages(ctx context.Context, raw []byte) ([]document.Page, error)
}

// Embedder returns a validated vector for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the part of the gateway ingestion writes through.
type VectorStore interface {
	CollectionNameFor(documentKey string) string
	GetOrCreate(ctx context.Context, name string) (domcol.Collection, error)
	Upsert(ctx context.Context, name string, vectors []vector.Vector) error
}
