package vectorstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	domcol "github.com/Mikedodunnit/Chatpdf/internal/domain/collection"
	"github.com/Mikedodunnit/Chatpdf/internal/domain/vector"
)

// Hash field names of a stored vector.
const (
	fieldPageNumber = "page_number"
	fieldText       = "text"
	fieldVector     = "vector"
)

var returnFields = []string{fieldPageNumber, fieldText}

func collectionToHash(col domcol.Collection) map[string]string {
	return map[string]string{
		"name":       col.Name(),
		"vector_dim": strconv.Itoa(col.VectorDim()),
		"distance":   "COSINE",
		"created_at": strconv.FormatInt(col.CreatedAt(), 10),
	}
}

func collectionFromHash(m map[string]string) (domcol.Collection, error) {
	dim, err := strconv.Atoi(m["vector_dim"])
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("invalid vector_dim: %w", err)
	}
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return domcol.Reconstruct(m["name"], dim, createdAt), nil
}

func vectorToHash(v vector.Vector) map[string]string {
	return map[string]string{
		fieldPageNumber: strconv.Itoa(v.Metadata.PageNumber),
		fieldText:       v.Metadata.Text,
		fieldVector:     vectorToBytes(v.Values),
	}
}

func metadataFromFields(m map[string]string) vector.Metadata {
	page, _ := strconv.Atoi(m[fieldPageNumber])
	return vector.Metadata{PageNumber: page, Text: m[fieldText]}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
