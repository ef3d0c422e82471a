package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
)

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, s := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	first, err := ce.Embed(ctx, "page one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 10 {
		t.Errorf("TotalTokens = %d, want 10 on miss", first.TotalTokens)
	}
	if len(s.data) != 1 {
		t.Fatalf("expected one cached entry, got %d", len(s.data))
	}

	second, err := ce.Embed(ctx, "page one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0 on hit", second.TotalTokens)
	}
	for i, v := range []float32{0.1, 0.2, 0.3} {
		if second.Embedding[i] != v {
			t.Fatalf("cached vector = %v", second.Embedding)
		}
	}
}

func TestEmbed_KeyIncludesModel(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, s := newTestCachedEmbedder(t, inner)

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for k := range s.data {
		if !strings.HasPrefix(k, "chatpdf-emb:text-embedding-ada-002:") {
			t.Errorf("key = %q", k)
		}
	}

	other := New(inner, s, "other-model", nil, zap.NewNop())
	if _, err := other.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (distinct models must not share entries)", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, s := newTestCachedEmbedder(t, inner)

	_, err := ce.Embed(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "provider down") {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(s.data) != 0 {
		t.Error("failed embeddings must not be cached")
	}
}

func TestEmbed_StoreFailuresAreSoft(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}}}
	ce, s := newTestCachedEmbedder(t, inner)
	s.getErr = errors.New("read timeout")
	s.setErr = errors.New("write timeout")

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("cache failures must not surface: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("embedding = %v", res.Embedding)
	}
}

func TestEmbed_CorruptEntryFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}}}
	ce, s := newTestCachedEmbedder(t, inner)
	s.data[ce.key("x")] = map[string]string{vectorField: "abc"}

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestEmbed_CountsResults(t *testing.T) {
	results := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}}}
	ce := New(inner, newMemHashStore(), "m", results, nil)

	for range 3 {
		if _, err := ce.Embed(context.Background(), "same"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := testutil.ToFloat64(results.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(results.WithLabelValues("hit")); got != 2 {
		t.Errorf("hit = %v, want 2", got)
	}
}

func TestEncodeDecode(t *testing.T) {
	in := []float32{0, -1.5, 3.25}
	out, err := decode(encode(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("decode(encode(%v)) = %v", in, out)
		}
	}
	if _, err := decode([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated data")
	}
}
