// Package ingest turns an uploaded document into a populated collection.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	"github.com/Mikedodunnit/Chatpdf/internal/domain/document"
	"github.com/Mikedodunnit/Chatpdf/internal/domain/vector"
	"github.com/Mikedodunnit/Chatpdf/internal/logger"
	"github.com/Mikedodunnit/Chatpdf/internal/metrics"
)

const (
	// DefaultConcurrency bounds in-flight embedding calls per document.
	DefaultConcurrency = 4
	// PreviewLength is the number of characters returned as a preview.
	PreviewLength = 500
)

// Result summarizes a successful ingestion.
type Result struct {
	DocumentKey string
	Collection  string
	// ChunkCount equals the number of extracted pages.
	ChunkCount int
	Preview    string
}

// Service runs the ingestion pipeline.
type Service struct {
	blobs       BlobFetcher
	extractor   Extractor
	embedder    Embedder
	store       VectorStore
	concurrency int
}

// New creates an ingestion service.
func New(blobs BlobFetcher, extractor Extractor, embedder Embedder, store VectorStore) *Service {
	return &Service{
		blobs:       blobs,
		extractor:   extractor,
		embedder:    embedder,
		store:       store,
		concurrency: DefaultConcurrency,
	}
}

// WithConcurrency sets the number of concurrent embedding calls.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Ingest fetches, extracts, embeds and stores documentKey. Nothing is
// written unless every chunk embedded successfully.
func (s *Service) Ingest(ctx context.Context, documentKey string) (Result, error) {
	start := time.Now()
	log := logger.FromContext(ctx).With(zap.String("document_key", documentKey))

	res, err := s.ingest(ctx, log, documentKey)
	metrics.IngestDuration.Observe(time.Since(start).Seconds())
	metrics.IngestDocumentsTotal.WithLabelValues(statusOf(err)).Inc()
	if err != nil {
		log.Warn("Ingestion failed", zap.Error(err))
		return Result{}, err
	}

	log.Info("Ingestion completed",
		zap.String("collection", res.Collection),
		zap.Int("chunks", res.ChunkCount),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (s *Service) ingest(ctx context.Context, log *zap.Logger, key string) (Result, error) {
	if strings.TrimSpace(key) == "" {
		return Result{}, domain.NewExtractionError("ingest", fmt.Errorf("empty document key: %w", domain.ErrInvalidInput))
	}

	raw, err := s.blobs.Fetch(ctx, key)
	if err != nil {
		return Result{}, domain.NewExtractionError("fetch document", err)
	}
	if len(raw) == 0 {
		return Result{}, domain.NewExtractionError("fetch document", domain.ErrEmptyDocument)
	}

	pages, err := s.extractor.Pages(ctx, raw)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, domain.NewExtractionError("extract pages", err)
	}
	if document.AllBlank(pages) {
		return Result{}, domain.NewExtractionError("extract pages", domain.ErrEmptyDocument)
	}
	log.Debug("Pages extracted", zap.Int("pages", len(pages)), zap.Int("bytes", len(raw)))

	chunks := unique(document.Chunks(pages))
	vectors, err := s.embedAll(ctx, chunks)
	if err != nil {
		return Result{}, err
	}
	log.Debug("Chunks embedded", zap.Int("chunks", len(chunks)), zap.Int("pages", len(pages)))

	name := s.store.CollectionNameFor(key)
	if _, err := s.store.GetOrCreate(ctx, name); err != nil {
		return Result{}, err
	}
	if err := s.store.Upsert(ctx, name, vectors); err != nil {
		return Result{}, err
	}
	metrics.IngestChunksTotal.Add(float64(len(vectors)))

	return Result{
		DocumentKey: key,
		Collection:  name,
		ChunkCount:  len(pages),
		Preview:     preview(pages),
	}, nil
}

// embedAll embeds chunks with bounded concurrency. The first failure cancels
// the remaining calls.
func (s *Service) embedAll(ctx context.Context, chunks []document.Chunk) ([]vector.Vector, error) {
	vectors := make([]vector.Vector, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, c := range chunks {
		g.Go(func() error {
			values, err := s.embedder.Embed(gctx, c.Text())
			if err != nil {
				return fmt.Errorf("page %d: %w", c.PageNumber(), err)
			}
			vectors[i] = vector.FromChunk(c, values)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrEmbedding) {
			return nil, err
		}
		return nil, domain.NewEmbeddingError("embed chunks", err)
	}
	return vectors, nil
}

// unique drops chunks whose id was already seen, keeping the lowest page.
func unique(chunks []document.Chunk) []document.Chunk {
	seen := make(map[string]struct{}, len(chunks))
	out := chunks[:0:0]
	for _, c := range chunks {
		if _, ok := seen[c.ID()]; ok {
			continue
		}
		seen[c.ID()] = struct{}{}
		out = append(out, c)
	}
	return out
}

func preview(pages []document.Page) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Text)
		if b.Len() >= PreviewLength*4 {
			break
		}
	}
	r := []rune(b.String())
	if len(r) > PreviewLength {
		r = r[:PreviewLength]
	}
	return string(r)
}

func statusOf(err error) string {
	switch domain.KindOf(err) {
	case domain.KindExtraction:
		return "extraction_error"
	case domain.KindEmbedding:
		return "embedding_error"
	case domain.KindStore:
		return "store_error"
	}
	if err != nil {
		return "canceled"
	}
	return "success"
}
