package vector

import "github.com/Mikedodunnit/Chatpdf/internal/domain/document"

// Metadata is stored alongside every vector and returned with matches.
type Metadata struct {
	PageNumber int
	Text       string
}

// Vector is an embedded chunk ready for upsert. ID equals the chunk id.
type Vector struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// FromChunk pairs a chunk with its embedding.
func FromChunk(c document.Chunk, values []float32) Vector {
	return Vector{
		ID:     c.ID(),
		Values: values,
		Metadata: Metadata{
			PageNumber: c.PageNumber(),
			Text:       c.Text(),
		},
	}
}

// Match is a query-time hit. Score is a similarity: higher is closer.
type Match struct {
	ID       string
	Score    float64
	Document string
	Metadata Metadata
}

// FallbackScore is assigned to documents returned by a full listing.
const FallbackScore = 0.5
