package chatpdf

import (
	"context"

	documentuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/document"
	healthuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/health"
	ingestuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/ingest"
	retrievaluc "github.com/Mikedodunnit/Chatpdf/internal/usecase/retrieval"
)

type mockIngestUC struct {
	ingestFn func(ctx context.Context, key string) (ingestuc.Result, error)
}

func (m *mockIngestUC) Ingest(ctx context.Context, key string) (ingestuc.Result, error) {
	return m.ingestFn(ctx, key)
}

type mockRetrievalUC struct {
	contextFn func(ctx context.Context, query, key string) (retrievaluc.Result, error)
}

func (m *mockRetrievalUC) Context(ctx context.Context, query, key string) (retrievaluc.Result, error) {
	return m.contextFn(ctx, query, key)
}

type mockDocumentUC struct {
	getFn    func(ctx context.Context, key string) (documentuc.Info, error)
	deleteFn func(ctx context.Context, key string) error
}

func (m *mockDocumentUC) Get(ctx context.Context, key string) (documentuc.Info, error) {
	return m.getFn(ctx, key)
}

func (m *mockDocumentUC) Delete(ctx context.Context, key string) error {
	return m.deleteFn(ctx, key)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

type stubEmbedder struct {
	result EmbeddingResult
	err    error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	return s.result, s.err
}
