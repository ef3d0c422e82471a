package chatpdf

import "github.com/Mikedodunnit/Chatpdf/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrExtraction          = domain.ErrExtraction
	ErrEmbedding           = domain.ErrEmbedding
	ErrStore               = domain.ErrStore
	ErrBlobNotFound        = domain.ErrBlobNotFound
	ErrNotFound            = domain.ErrNotFound
	ErrVectorDimMismatch   = domain.ErrVectorDimMismatch
	ErrRateLimited         = domain.ErrRateLimited
	ErrProviderUnavailable = domain.ErrProviderUnavailable
	ErrInvalidInput        = domain.ErrInvalidInput
)
