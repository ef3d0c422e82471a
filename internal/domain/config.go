package domain

import "strings"

// KeyPrefix namespaces every key chatpdf writes to the vector store.
const KeyPrefix = "chatpdf:"

// DistanceCosine is the only distance metric the gateway supports.
// Similarity is derived as 1 - distance, which assumes a metric bounded at 0 for identical vectors.
const DistanceCosine = "COSINE"

// VectorConfig fixes the embedding dimension and distance metric shared by
// the ingestion and query paths.
type VectorConfig struct {
	Dimensions     int
	DistanceMetric string
}

// DefaultVectorConfig matches Gemini embedding-001.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Dimensions:     768,
		DistanceMetric: DistanceCosine,
	}
}

// Validate fails fast on a configuration that would yield silently wrong scores.
func (c VectorConfig) Validate() error {
	if c.Dimensions <= 0 {
		return &Error{Kind: KindStore, Op: "validate vector config", Err: ErrVectorDimMismatch}
	}
	if !strings.EqualFold(c.DistanceMetric, DistanceCosine) {
		return &Error{Kind: KindStore, Op: "validate vector config: unsupported distance metric " + c.DistanceMetric}
	}
	return nil
}
