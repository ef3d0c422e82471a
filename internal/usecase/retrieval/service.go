// Package retrieval assembles a bounded context string for a chat turn.
package retrieval

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Mikedodunnit/Chatpdf/internal/domain/vector"
	"github.com/Mikedodunnit/Chatpdf/internal/logger"
	"github.com/Mikedodunnit/Chatpdf/internal/metrics"
)

const (
	DefaultTopK      = 5
	DefaultMinScore  = 0.05
	DefaultMaxLength = 3000
)

// Returned instead of an empty context.
const (
	PlaceholderNoContent = "The document has been processed and is available for querying. " +
		"Please ask specific questions about the content."
	PlaceholderDegraded = "The document is available for querying. " +
		"Please ask specific questions about the content."
)

// Options tunes the fallback sequence. Zero values take the defaults.
type Options struct {
	TopK      int
	MinScore  float64
	MaxLength int
}

// Result is the assembled context and the stage that produced it.
// Stage is StageThreshold, StageNonEmpty or StageListAll when content was
// found and StagePlaceholder otherwise.
type Result struct {
	Context string
	Stage   Stage
}

// Service runs the staged retrieval.
type Service struct {
	embedder Embedder
	store    VectorStore
	topK     int
	minScore float64
	maxLen   int
}

// New creates a retrieval service.
func New(embedder Embedder, store VectorStore, opts Options) *Service {
	s := &Service{
		embedder: embedder,
		store:    store,
		topK:     opts.TopK,
		minScore: opts.MinScore,
		maxLen:   opts.MaxLength,
	}
	if s.topK <= 0 {
		s.topK = DefaultTopK
	}
	if s.minScore <= 0 {
		s.minScore = DefaultMinScore
	}
	if s.maxLen <= 0 {
		s.maxLen = DefaultMaxLength
	}
	return s
}

// Context returns the context for query against documentKey's collection.
// Failures degrade to a placeholder; only cancellation of ctx is returned
// as an error.
func (s *Service) Context(ctx context.Context, query, documentKey string) (Result, error) {
	name := s.store.CollectionNameFor(documentKey)
	log := logger.FromContext(ctx).With(zap.String("collection", name))

	degrade := func(stage Stage, err error) (Result, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		log.Warn("Retrieval stage failed", zap.Stringer("stage", stage), zap.Error(err))
		return s.placeholder(log, PlaceholderDegraded), nil
	}

	values, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return degrade(StageEmbed, err)
	}

	matches, err := s.store.Query(ctx, name, values, s.topK)
	if err != nil {
		return degrade(StageQuery, err)
	}
	log.Debug("Similarity query done", zap.Int("matches", len(matches)))

	// Blank documents never qualify on score alone; they would assemble to nothing.
	if docs := filter(matches, func(m vector.Match) bool { return m.Score > s.minScore && hasText(m) }); len(docs) > 0 {
		return s.assemble(log, StageThreshold, docs), nil
	}
	log.Debug("Threshold stage empty, trying non-empty matches", zap.Float64("min_score", s.minScore))
	if docs := filter(matches, hasText); len(docs) > 0 {
		return s.assemble(log, StageNonEmpty, docs), nil
	}
	log.Debug("No non-empty matches, listing all vectors")

	all, err := s.store.ListAll(ctx, name)
	if err != nil {
		return degrade(StageListAll, err)
	}
	if len(all) == 0 {
		return s.placeholder(log, PlaceholderNoContent), nil
	}
	for i := range all {
		all[i].Score = vector.FallbackScore
	}
	return s.assemble(log, StageListAll, all), nil
}

// assemble sorts docs by descending score, keeping retrieval order on ties,
// and joins their text within the length bound.
func (s *Service) assemble(log *zap.Logger, stage Stage, docs []vector.Match) Result {
	slices.SortStableFunc(docs, func(a, b vector.Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Document
	}
	out := truncate(strings.Join(texts, "\n"), s.maxLen)
	if strings.TrimSpace(out) == "" {
		return s.placeholder(log, PlaceholderNoContent)
	}

	metrics.RetrievalStageTotal.WithLabelValues(stage.String()).Inc()
	log.Info("Context assembled",
		zap.Stringer("stage", stage),
		zap.Int("docs", len(docs)),
		zap.Int("length", len([]rune(out))),
	)
	return Result{Context: out, Stage: stage}
}

func (s *Service) placeholder(log *zap.Logger, text string) Result {
	metrics.RetrievalStageTotal.WithLabelValues(StagePlaceholder.String()).Inc()
	log.Info("No context found, returning placeholder")
	return Result{Context: truncate(text, s.maxLen), Stage: StagePlaceholder}
}

func hasText(m vector.Match) bool { return strings.TrimSpace(m.Document) != "" }

func filter(matches []vector.Match, keep func(vector.Match) bool) []vector.Match {
	var out []vector.Match
	for _, m := range matches {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
