package vectorstore

import "github.com/Mikedodunnit/Chatpdf/internal/db"

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex defines the per-collection index: page number plus an HNSW/COSINE vector.
func buildIndex(name string, dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName(name)).
		OnHash().
		Prefix(collectionPrefix(name)).
		Numeric(fieldPageNumber).
		VectorHNSW(fieldVector, dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}
