package document

import (
	"context"

	domcol "github.com/Mikedodunnit/Chatpdf/internal/domain/collection"
)

// Repository is the collection side of the vector store gateway.
type Repository interface {
	CollectionNameFor(documentKey string) string
	Get(ctx context.Context, name string) (domcol.Collection, error)
	Count(ctx context.Context, name string) (int, error)
	Delete(ctx context.Context, name string) error
}
