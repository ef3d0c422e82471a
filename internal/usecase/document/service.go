// Package document exposes lookup and removal of an ingested document.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	"github.com/Mikedodunnit/Chatpdf/internal/logger"
)

// Info describes the collection backing a document.
type Info struct {
	DocumentKey string
	Collection  string
	VectorDim   int
	VectorCount int
	CreatedAt   time.Time
}

// Service handles document lookup and deletion.
type Service struct {
	repo Repository
}

// New creates a document service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the collection stats for documentKey.
func (s *Service) Get(ctx context.Context, documentKey string) (Info, error) {
	if strings.TrimSpace(documentKey) == "" {
		return Info{}, fmt.Errorf("document key is required: %w", domain.ErrInvalidInput)
	}
	name := s.repo.CollectionNameFor(documentKey)

	col, err := s.repo.Get(ctx, name)
	if err != nil {
		return Info{}, fmt.Errorf("get collection: %w", err)
	}

	// Metadata is written before the index, so a missing index means nothing was stored yet.
	n, err := s.repo.Count(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return Info{}, fmt.Errorf("count vectors: %w", err)
	}

	return Info{
		DocumentKey: documentKey,
		Collection:  name,
		VectorDim:   col.VectorDim(),
		VectorCount: n,
		CreatedAt:   time.UnixMilli(col.CreatedAt()),
	}, nil
}

// Delete removes the document's collection and every stored vector.
func (s *Service) Delete(ctx context.Context, documentKey string) error {
	if strings.TrimSpace(documentKey) == "" {
		return fmt.Errorf("document key is required: %w", domain.ErrInvalidInput)
	}
	name := s.repo.CollectionNameFor(documentKey)

	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	logger.FromContext(ctx).Info("Document deleted",
		zap.String("document_key", documentKey),
		zap.String("collection", name),
	)
	return nil
}
