package embedding

import (
	"context"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
)

// Provider is the transport-level embedder (OpenAI-compatible or Gemini).
type Provider interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
